// Package config loads and merges scrub configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SCRUB_FORMAT, SCRUB_REDACT_EXTENSION_URLS, SCRUB_ADDR, etc.)
//  3. Config file ($XDG_CONFIG_HOME/scrub/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key.
package config
