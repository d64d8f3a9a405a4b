package redact

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scheme is one of the URL schemes the redactor recognizes.
type Scheme int

const (
	SchemeHTTP Scheme = iota
	SchemeHTTPS
	SchemeFTP
	SchemeMozExtension
)

// schemeTable lists every recognized scheme. Order does not matter: a
// literal only matches when "://" follows it directly.
var schemeTable = [...]struct {
	scheme Scheme
	name   string
	gated  bool
}{
	{SchemeHTTPS, "https", false},
	{SchemeHTTP, "http", false},
	{SchemeFTP, "ftp", false},
	{SchemeMozExtension, "moz-extension", true},
}

const separator = "://"

// Schemes returns all recognized schemes, gated ones included.
func Schemes() []Scheme {
	out := make([]Scheme, 0, len(schemeTable))
	for _, e := range schemeTable {
		out = append(out, e.scheme)
	}
	return out
}

// ParseScheme returns the Scheme named s. Matching is case-sensitive.
func ParseScheme(s string) (Scheme, bool) {
	for _, e := range schemeTable {
		if e.name == s {
			return e.scheme, true
		}
	}
	return 0, false
}

func (s Scheme) String() string {
	switch s {
	case SchemeHTTP:
		return "http"
	case SchemeHTTPS:
		return "https"
	case SchemeFTP:
		return "ftp"
	case SchemeMozExtension:
		return "moz-extension"
	default:
		return "unknown"
	}
}

// Prefix returns the scheme followed by "://".
func (s Scheme) Prefix() string {
	return s.String() + separator
}

// Gated reports whether recognition of s depends on the Policy.
func (s Scheme) Gated() bool {
	for _, e := range schemeTable {
		if e.scheme == s {
			return e.gated
		}
	}
	return false
}

// enabled reports whether p allows s to be recognized.
func (p Policy) enabled(s Scheme) bool {
	if s.Gated() {
		return !p.KeepExtensionURLs
	}
	return true
}

// matchScheme checks whether text at offset starts with an enabled scheme
// literal followed by "://". It returns the scheme and the offset just past
// the separator.
func matchScheme(text string, offset int, p Policy) (Scheme, int, bool) {
	rest := text[offset:]
	for _, e := range schemeTable {
		if !strings.HasPrefix(rest, e.name) {
			continue
		}
		if !strings.HasPrefix(rest[len(e.name):], separator) {
			continue
		}
		if !p.enabled(e.scheme) || !tokenStart(text, offset) {
			return 0, 0, false
		}
		return e.scheme, offset + len(e.name) + len(separator), true
	}
	return 0, 0, false
}

// tokenStart reports whether offset is not inside a larger identifier.
func tokenStart(text string, offset int) bool {
	if offset == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:offset])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_')
}
