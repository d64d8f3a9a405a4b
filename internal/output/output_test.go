package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/scrub/internal/stream"
	"gopkg.in/yaml.v3"
)

func sampleReport() *stream.Report {
	r := &stream.Report{Tool: "scrub", Version: "1.0"}
	r.Add(stream.FileReport{
		Path:     "clean.log",
		Stats:    stream.Stats{Lines: 4, Bytes: 80},
		Findings: []stream.Finding{},
	})
	r.Add(stream.FileReport{
		Path: "crash.txt",
		Stats: stream.Stats{
			Lines: 2, Bytes: 60, URLs: 3,
			ByScheme: map[string]int{"https": 2, "ftp": 1},
		},
		Findings: []stream.Finding{
			{Line: 1, Column: 5, Scheme: "https"},
			{Line: 1, Column: 40, Scheme: "https"},
			{Line: 2, Column: 1, Scheme: "ftp"},
		},
	})
	return r
}

func emptyReport() *stream.Report {
	r := &stream.Report{Tool: "scrub", Version: "1.0"}
	r.Add(stream.FileReport{Path: "stdin", Stats: stream.Stats{Lines: 1, Bytes: 3}, Findings: []stream.Finding{}})
	return r
}

func TestGetWriter(t *testing.T) {
	for _, format := range Formats {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q) error: %v", format, err)
		}
	}
	if _, err := GetWriter("html"); err == nil {
		t.Error("GetWriter(html) should fail")
	}
}

func TestTextWriter_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "URLs: 0 total") {
		t.Error("Output should show zero URLs")
	}
	if !strings.Contains(out, "No URLs found") {
		t.Error("Output should say no URLs found")
	}
}

func TestTextWriter_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"URLs: 3 total (2 https, 1 ftp)",
		"crash.txt (3)",
		"crash.txt:1:40  https://<URL>",
		"crash.txt:2:1  ftp://<URL>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "clean.log") {
		t.Error("Files without findings should not be listed")
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	var got stream.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if got.Totals.URLs != 3 {
		t.Errorf("Totals.URLs = %d, want 3", got.Totals.URLs)
	}
	if len(got.Files) != 2 {
		t.Errorf("Files = %d, want 2", len(got.Files))
	}
}

func TestYAMLWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	var got stream.Report
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}
	if got.Totals.ByScheme["https"] != 2 {
		t.Errorf("ByScheme[https] = %d, want 2", got.Totals.ByScheme["https"])
	}
	if got.Files[1].Findings[2].Scheme != "ftp" {
		t.Errorf("last finding scheme = %q, want ftp", got.Files[1].Findings[2].Scheme)
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## URL Audit",
		"| ftp | 1 |",
		"| https | 2 |",
		"| **Total** | **3** |",
		"<summary><code>crash.txt</code> (3)</summary>",
		"| 1 | 40 | `https` |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := (&MarkdownWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "No URLs found") {
		t.Error("Empty report should say no URLs found")
	}
}

func TestSARIFWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	var sarif sarifLog
	if err := json.Unmarshal(buf.Bytes(), &sarif); err != nil {
		t.Fatalf("Invalid SARIF JSON: %v", err)
	}
	if sarif.Version != "2.1.0" {
		t.Errorf("Version = %q, want %q", sarif.Version, "2.1.0")
	}
	run := sarif.Runs[0]
	if run.Tool.Driver.Name != "scrub" {
		t.Errorf("Driver name = %q, want scrub", run.Tool.Driver.Name)
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("Rules = %d, want 2 (one per scheme)", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 3 {
		t.Fatalf("Results = %d, want 3", len(run.Results))
	}
	r := run.Results[1]
	if r.RuleID != "scrub/url/https" {
		t.Errorf("RuleID = %q, want scrub/url/https", r.RuleID)
	}
	loc := r.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "crash.txt" || loc.Region.StartLine != 1 || loc.Region.StartColumn != 40 {
		t.Errorf("unexpected location %+v", loc)
	}
}

func TestSARIFWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Errorf("empty SARIF should carry an empty results array:\n%s", buf.String())
	}
}

func TestWriteReport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteReport(sampleReport(), "json", path); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !json.Valid(data) {
		t.Error("report file is not valid JSON")
	}
	if err := WriteReport(sampleReport(), "bogus", path); err == nil {
		t.Error("WriteReport with unknown format should fail")
	}
}
