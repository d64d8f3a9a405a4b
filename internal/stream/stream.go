package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dshills/scrub/internal/redact"
)

// Stats summarizes one redaction pass.
type Stats struct {
	Lines    int            `json:"lines" yaml:"lines"`
	Bytes    int64          `json:"bytes" yaml:"bytes"`
	URLs     int            `json:"urls" yaml:"urls"`
	ByScheme map[string]int `json:"byScheme,omitempty" yaml:"byScheme,omitempty"`
}

func (s *Stats) addMatches(ms []redact.Match) {
	if len(ms) == 0 {
		return
	}
	if s.ByScheme == nil {
		s.ByScheme = make(map[string]int)
	}
	for _, m := range ms {
		s.URLs++
		s.ByScheme[m.Scheme.String()]++
	}
}

// Copy reads src line by line and writes the redacted lines to dst.
func Copy(dst io.Writer, src io.Reader, p redact.Policy) (Stats, error) {
	var stats Stats
	br := bufio.NewReader(src)
	bw := bufio.NewWriter(dst)
	err := eachLine(br, func(line string) error {
		stats.Lines++
		stats.Bytes += int64(len(line))
		out, ms := p.RedactMatches(line)
		stats.addMatches(ms)
		if _, err := bw.WriteString(out); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("writing output: %w", err)
	}
	return stats, nil
}

// Finding locates one URL. Line and Column are 1-based; Column counts
// runes. The URL itself is never recorded.
type Finding struct {
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Scheme string `json:"scheme" yaml:"scheme"`
}

// FileReport holds the audit result for a single input.
type FileReport struct {
	Path     string    `json:"path" yaml:"path"`
	Stats    Stats     `json:"stats" yaml:"stats"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Audit scans src for URLs without producing redacted output.
func Audit(path string, src io.Reader, p redact.Policy) (FileReport, error) {
	fr := FileReport{Path: path, Findings: []Finding{}}
	br := bufio.NewReader(src)
	err := eachLine(br, func(line string) error {
		fr.Scan(fr.Stats.Lines+1, line, p)
		return nil
	})
	return fr, err
}

// Scan records the URLs found on one line. lineNo is 1-based and need not
// be contiguous with earlier calls.
func (fr *FileReport) Scan(lineNo int, line string, p redact.Policy) {
	if fr.Findings == nil {
		fr.Findings = []Finding{}
	}
	fr.Stats.Lines++
	fr.Stats.Bytes += int64(len(line))
	ms := p.Matches(line)
	fr.Stats.addMatches(ms)
	for _, m := range ms {
		fr.Findings = append(fr.Findings, Finding{
			Line:   lineNo,
			Column: utf8.RuneCountInString(line[:m.Start]) + 1,
			Scheme: m.Scheme.String(),
		})
	}
}

// Report aggregates audits over several inputs.
type Report struct {
	Tool    string       `json:"tool" yaml:"tool"`
	Version string       `json:"version" yaml:"version"`
	Files   []FileReport `json:"files" yaml:"files"`
	Totals  Stats        `json:"totals" yaml:"totals"`
}

// Add appends fr and folds its stats into the totals.
func (r *Report) Add(fr FileReport) {
	r.Files = append(r.Files, fr)
	r.Totals.Lines += fr.Stats.Lines
	r.Totals.Bytes += fr.Stats.Bytes
	r.Totals.URLs += fr.Stats.URLs
	for scheme, n := range fr.Stats.ByScheme {
		if r.Totals.ByScheme == nil {
			r.Totals.ByScheme = make(map[string]int)
		}
		r.Totals.ByScheme[scheme] += n
	}
}

// HasFindings reports whether any input contained a URL.
func (r *Report) HasFindings() bool {
	return r.Totals.URLs > 0
}

// eachLine calls fn with every line of br, terminator included. The last
// line may lack a terminator.
func eachLine(br *bufio.Reader, fn func(string) error) error {
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}
}
