// Scrub is a local-first CLI and HTTP service for removing URLs from logs,
// telemetry payloads and crash reports before they leave the machine.
//
// Every http, https, ftp and moz-extension URL is reduced to its scheme
// followed by "<URL>"; all other text is kept byte for byte. Exit codes are
// deterministic so the check command can gate CI jobs and git hooks.
//
// Usage:
//
//	scrub text "see https://example.com/a"   # redact arguments or stdin
//	scrub file crash.log                     # redact files to stdout
//	scrub file --write crash.log             # rewrite files in place
//	scrub json < payload.json                # redact JSON string values
//	scrub check --format sarif logs/*.txt    # report URLs, exit 1 if any
//	scrub serve --addr :8088                 # run the HTTP service
//	scrub hook install                       # block commits that add URLs
package main
