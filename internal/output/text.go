package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dshills/scrub/internal/redact"
	"github.com/dshills/scrub/internal/stream"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *stream.Report) error {
	ew := &errWriter{w: w}

	ew.printf("URL audit: %d file(s), %d line(s)\n", len(report.Files), report.Totals.Lines)
	ew.println(strings.Repeat("─", 60))
	ew.printf("URLs: %d total", report.Totals.URLs)
	if report.Totals.URLs > 0 {
		ew.printf(" (%s)", schemeBreakdown(report.Totals.ByScheme))
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if !report.HasFindings() {
		ew.println("\nNo URLs found.")
		return ew.err
	}

	for _, fr := range report.Files {
		if len(fr.Findings) == 0 {
			continue
		}
		ew.printf("\n%s (%d)\n", fr.Path, len(fr.Findings))
		for _, f := range fr.Findings {
			ew.printf("  %s:%d:%d  %s://%s\n", fr.Path, f.Line, f.Column, f.Scheme, redact.Placeholder)
		}
	}

	return ew.err
}

// schemeBreakdown renders counts as "2 https, 1 ftp", largest first.
func schemeBreakdown(counts map[string]int) string {
	schemes := make([]string, 0, len(counts))
	for s := range counts {
		schemes = append(schemes, s)
	}
	sort.Slice(schemes, func(i, j int) bool {
		if counts[schemes[i]] != counts[schemes[j]] {
			return counts[schemes[i]] > counts[schemes[j]]
		}
		return schemes[i] < schemes[j]
	})
	parts := make([]string, 0, len(schemes))
	for _, s := range schemes {
		parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
	}
	return strings.Join(parts, ", ")
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
