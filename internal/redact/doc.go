// Package redact removes URLs from free-form text before it leaves a trust
// boundary.
//
// Only URLs introduced by a small closed set of schemes (http, https, ftp and,
// depending on the Policy, moz-extension) are recognized. For every accepted
// URL the scheme prefix is kept and everything after "://" is replaced by
// <URL>, so "see https://example.com/a?b" becomes "see https://<URL>".
// Internal schemes such as chrome://, resource:// and file:// are never
// touched.
//
// A URL ends at the first whitespace or parenthesis. Candidates whose
// authority holds no letter, digit or underscore ("http://", "http://../",
// "http:///a") are left as they are.
package redact
