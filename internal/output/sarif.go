package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/scrub/internal/stream"
)

// SARIFWriter outputs URL findings in SARIF v2.1.0 format. Each scheme maps
// to one rule.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *stream.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

const sarifLevel = "warning"

func buildSARIF(report *stream.Report) sarifLog {
	rules := []sarifRule{}
	seen := make(map[string]bool)
	results := []sarifResult{}

	for _, fr := range report.Files {
		for _, f := range fr.Findings {
			ruleID := ruleIDFor(f.Scheme)
			if !seen[ruleID] {
				seen[ruleID] = true
				rules = append(rules, sarifRule{
					ID:               ruleID,
					Name:             f.Scheme + "-url",
					ShortDescription: sarifMessage{Text: fmt.Sprintf("Unredacted %s URL", f.Scheme)},
					DefaultConfig:    sarifDefaultConfig{Level: sarifLevel},
				})
			}
			results = append(results, sarifResult{
				RuleID:  ruleID,
				Level:   sarifLevel,
				Message: sarifMessage{Text: fmt.Sprintf("%s://<URL> may leak a host, path or credentials", f.Scheme)},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: fr.Path},
						Region: sarifRegion{
							StartLine:   f.Line,
							StartColumn: f.Column,
						},
					},
				}},
			})
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           report.Tool,
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/scrub",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

func ruleIDFor(scheme string) string {
	return "scrub/url/" + scheme
}
