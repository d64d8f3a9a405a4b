package redact

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder replaces everything after "://" in a redacted URL.
const Placeholder = "<URL>"

// Policy controls which schemes are recognized. The zero value is the
// default policy: every scheme, moz-extension included, is redacted.
type Policy struct {
	// KeepExtensionURLs leaves moz-extension:// URLs untouched.
	KeepExtensionURLs bool
}

// Match is an accepted URL span. Start is the offset of the scheme name,
// SchemeEnd the offset just past "://" and End is exclusive.
type Match struct {
	Scheme    Scheme
	Start     int
	SchemeEnd int
	End       int
}

// SegmentKind distinguishes verbatim text from matched URLs.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentURL
)

// Segment is one piece of scanned input. For SegmentText, Text is copied to
// the output unchanged. For SegmentURL, Text holds the original URL and
// Match locates it.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Match Match
}

// URLs redacts text using the default policy.
func URLs(text string) string {
	return Policy{}.Redact(text)
}

// Redact returns text with the remainder of every recognized URL replaced
// by Placeholder.
func (p Policy) Redact(text string) string {
	if !strings.Contains(text, separator) {
		return text
	}
	return Assemble(p.Segments(text))
}

// RedactMatches redacts text in a single scan and also returns the matches
// it replaced.
func (p Policy) RedactMatches(text string) (string, []Match) {
	var ms []Match
	out := Assemble(func(yield func(Segment) bool) {
		for seg := range p.Segments(text) {
			if seg.Kind == SegmentURL {
				ms = append(ms, seg.Match)
			}
			if !yield(seg) {
				return
			}
		}
	})
	return out, ms
}

// CountByScheme tallies matches per scheme name.
func CountByScheme(ms []Match) map[string]int {
	counts := make(map[string]int)
	for _, m := range ms {
		counts[m.Scheme.String()]++
	}
	return counts
}

// Matches returns every accepted URL in text, in order.
func (p Policy) Matches(text string) []Match {
	var out []Match
	for seg := range p.Segments(text) {
		if seg.Kind == SegmentURL {
			out = append(out, seg.Match)
		}
	}
	return out
}

// Segments scans text once, left to right, yielding verbatim and URL
// segments. Concatenating the Text of all segments reproduces text.
// Adjacent verbatim pieces may be yielded as separate segments.
func (p Policy) Segments(text string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		cursor := 0
		for cursor < len(text) {
			start, scheme, schemeEnd, ok := nextCandidate(text, cursor, p)
			if !ok {
				break
			}
			if start > cursor {
				if !yield(Segment{Kind: SegmentText, Text: text[cursor:start]}) {
					return
				}
			}
			end := boundary(text, schemeEnd)
			if !validRemainder(text[schemeEnd:end]) {
				if !yield(Segment{Kind: SegmentText, Text: text[start:schemeEnd]}) {
					return
				}
				cursor = schemeEnd
				continue
			}
			m := Match{Scheme: scheme, Start: start, SchemeEnd: schemeEnd, End: end}
			if !yield(Segment{Kind: SegmentURL, Text: text[start:end], Match: m}) {
				return
			}
			cursor = end
		}
		if cursor < len(text) {
			yield(Segment{Kind: SegmentText, Text: text[cursor:]})
		}
	}
}

// Assemble joins segments into the redacted output.
func Assemble(segs iter.Seq[Segment]) string {
	var b strings.Builder
	for seg := range segs {
		switch seg.Kind {
		case SegmentURL:
			b.WriteString(seg.Match.Scheme.Prefix())
			b.WriteString(Placeholder)
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// nextCandidate finds the first enabled scheme literal at or after from.
// Scheme literals are ASCII, so stepping byte by byte never matches inside
// a multi-byte rune.
func nextCandidate(text string, from int, p Policy) (int, Scheme, int, bool) {
	for i := from; i < len(text); i++ {
		switch text[i] {
		case 'h', 'f', 'm':
		default:
			continue
		}
		if scheme, end, ok := matchScheme(text, i, p); ok {
			return i, scheme, end, true
		}
	}
	return 0, 0, 0, false
}

// boundary returns the offset of the first whitespace or parenthesis at or
// after from, or len(text).
func boundary(text string, from int) int {
	i := strings.IndexFunc(text[from:], func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')'
	})
	if i < 0 {
		return len(text)
	}
	return from + i
}

// validRemainder applies the host-validity rule: the authority, which runs
// up to the first '/', '?' or '#', must hold a letter, digit or underscore.
func validRemainder(remainder string) bool {
	authority := remainder
	if i := strings.IndexAny(remainder, "/?#"); i >= 0 {
		authority = remainder[:i]
	}
	for len(authority) > 0 {
		r, size := utf8.DecodeRuneInString(authority)
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return true
		}
		authority = authority[size:]
	}
	return false
}
