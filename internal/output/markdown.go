package output

import (
	"io"
	"sort"

	"github.com/dshills/scrub/internal/stream"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *stream.Report) error {
	ew := &errWriter{w: w}

	ew.printf("## URL Audit\n\n")
	ew.printf("| Scheme | Count |\n")
	ew.printf("|--------|-------|\n")
	for _, s := range sortedSchemes(report.Totals.ByScheme) {
		ew.printf("| %s | %d |\n", s, report.Totals.ByScheme[s])
	}
	ew.printf("| **Total** | **%d** |\n\n", report.Totals.URLs)

	if !report.HasFindings() {
		ew.println("No URLs found. :white_check_mark:")
		return ew.err
	}

	for _, fr := range report.Files {
		if len(fr.Findings) == 0 {
			continue
		}
		ew.printf("<details>\n<summary><code>%s</code> (%d)</summary>\n\n", fr.Path, len(fr.Findings))
		ew.printf("| Line | Column | Scheme |\n")
		ew.printf("|------|--------|--------|\n")
		for _, f := range fr.Findings {
			ew.printf("| %d | %d | `%s` |\n", f.Line, f.Column, f.Scheme)
		}
		ew.printf("\n</details>\n\n")
	}

	return ew.err
}

func sortedSchemes(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for s := range counts {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
