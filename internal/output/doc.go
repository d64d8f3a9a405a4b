// Package output formats URL audit reports for display or machine consumption.
//
// Five formats are supported:
//   - text     : human-readable terminal output (default)
//   - json     : full structured JSON report
//   - yaml     : the same structure as YAML
//   - markdown : PR-comment-friendly summary with a findings table
//   - sarif    : SARIF v2.1.0 for upload to code-scanning services
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*stream.Report]. [WriteReport]
// handles destination selection.
package output
