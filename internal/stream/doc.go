// Package stream applies URL redaction to files and standard input.
//
// A URL never spans whitespace, so input is processed one line at a time and
// the result is identical to redacting the whole text at once. Line
// terminators are preserved byte for byte.
//
// Audit locates URLs without producing redacted output, for use as a CI gate.
package stream
