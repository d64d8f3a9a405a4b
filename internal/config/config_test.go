package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Format != "text" {
		t.Errorf("Default format = %q, want %q", cfg.Format, "text")
	}
	if !cfg.RedactExtensionURLs {
		t.Error("Default redactExtensionUrls should be true")
	}
	if cfg.MaxInputBytes != 10<<20 {
		t.Errorf("Default maxInputBytes = %d, want %d", cfg.MaxInputBytes, 10<<20)
	}
	if cfg.Server.Addr != "127.0.0.1:8088" {
		t.Errorf("Default addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestPolicy(t *testing.T) {
	cfg := Default()
	if cfg.Policy().KeepExtensionURLs {
		t.Error("default policy should redact extension URLs")
	}
	cfg.RedactExtensionURLs = false
	if !cfg.Policy().KeepExtensionURLs {
		t.Error("policy should keep extension URLs when redaction is off")
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("SCRUB_FORMAT", "json")
	t.Setenv("SCRUB_REDACT_EXTENSION_URLS", "false")
	t.Setenv("SCRUB_MAX_INPUT_BYTES", "2048")
	t.Setenv("SCRUB_LOG_LEVEL", "debug")
	t.Setenv("SCRUB_ADDR", ":9000")
	t.Setenv("SCRUB_RATE_LIMIT", "5")

	cfg := Default()
	if err := mergeEnv(&cfg); err != nil {
		t.Fatalf("mergeEnv error: %v", err)
	}

	if cfg.Format != "json" {
		t.Errorf("Format = %q, want %q", cfg.Format, "json")
	}
	if cfg.RedactExtensionURLs {
		t.Error("RedactExtensionURLs should be false")
	}
	if cfg.MaxInputBytes != 2048 {
		t.Errorf("MaxInputBytes = %d, want 2048", cfg.MaxInputBytes)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Server.RateLimit != 5 {
		t.Errorf("Server.RateLimit = %d, want 5", cfg.Server.RateLimit)
	}
}

func TestMergeEnv_Malformed(t *testing.T) {
	t.Setenv("SCRUB_RATE_LIMIT", "lots")
	cfg := Default()
	if err := mergeEnv(&cfg); err == nil {
		t.Error("Expected error for malformed SCRUB_RATE_LIMIT")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	writeConfig(t, dir, `{"format":"yaml","redactExtensionUrls":false,"server":{"addr":":7000"}}`)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Format != "yaml" {
		t.Errorf("file should set format: got %q", cfg.Format)
	}
	if cfg.RedactExtensionURLs {
		t.Error("file should be able to turn off redactExtensionUrls")
	}
	if cfg.Server.RateLimit != 600 {
		t.Errorf("absent field should keep default: rateLimit = %d", cfg.Server.RateLimit)
	}

	t.Setenv("SCRUB_FORMAT", "json")
	cfg, err = Load(nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("env should beat file: got %q", cfg.Format)
	}

	cfg, err = Load(map[string]string{"format": "sarif", "server.addr": ""})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Format != "sarif" {
		t.Errorf("override should beat env: got %q", cfg.Format)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("empty override should be ignored: addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if _, err := Load(map[string]string{"format": "html"}); err == nil {
		t.Error("Expected validation error for unknown format")
	}

	writeConfig(t, dir, `{not json`)
	if _, err := Load(nil); err == nil {
		t.Error("Expected parse error for malformed config file")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := Default()
	cfg.Server.RateLimit = 42
	cfg.RedactExtensionURLs = false
	if err := Save(cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got != cfg {
		t.Errorf("LoadFile() = %+v, want %+v", got, cfg)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
	}{
		{"format", "markdown"},
		{"redactExtensionUrls", "false"},
		{"maxInputBytes", "1024"},
		{"log.level", "warn"},
		{"server.addr", ":1234"},
		{"server.rateLimit", "0"},
		{"server.metricsNamespace", "edge"},
	}

	for _, tt := range tests {
		if err := SetField(&cfg, tt.key, tt.value); err != nil {
			t.Errorf("SetField(%q, %q) error: %v", tt.key, tt.value, err)
		}
	}

	if cfg.Format != "markdown" {
		t.Errorf("Format = %q, want markdown", cfg.Format)
	}
	if cfg.MaxInputBytes != 1024 {
		t.Errorf("MaxInputBytes = %d, want 1024", cfg.MaxInputBytes)
	}
	if cfg.Server.MetricsNamespace != "edge" {
		t.Errorf("MetricsNamespace = %q, want edge", cfg.Server.MetricsNamespace)
	}
}

func TestSetField_Errors(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "value"); err == nil {
		t.Error("Expected error for unknown key")
	}
	if err := SetField(&cfg, "maxInputBytes", "big"); err == nil {
		t.Error("Expected error for non-integer value")
	}
	if err := SetField(&cfg, "redactExtensionUrls", "maybe"); err == nil {
		t.Error("Expected error for non-boolean value")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "pdf" }},
		{"max input", func(c *Config) { c.MaxInputBytes = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"addr", func(c *Config) { c.Server.Addr = "" }},
		{"rate limit", func(c *Config) { c.Server.RateLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func writeConfig(t *testing.T, xdg, body string) {
	t.Helper()
	dir := filepath.Join(xdg, "scrub")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}
