// Package cli wires together the Cobra command tree for the scrub binary.
//
// It defines the root command and all subcommands (text, file, json, check,
// serve, config, hook, version), binds flags, reads configuration, invokes
// the redactor, and returns deterministic exit codes for CI gating.
package cli
