package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"

	"github.com/google/renameio/v2"

	"github.com/dshills/scrub/internal/redact"
)

// Config represents the scrub configuration.
type Config struct {
	Format              string       `json:"format"`
	RedactExtensionURLs bool         `json:"redactExtensionUrls"`
	MaxInputBytes       int64        `json:"maxInputBytes"`
	Log                 LogConfig    `json:"log"`
	Server              ServerConfig `json:"server"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `json:"level"`
}

// ServerConfig controls the HTTP redaction service.
type ServerConfig struct {
	Addr             string `json:"addr"`
	RateLimit        int    `json:"rateLimit"`
	MetricsNamespace string `json:"metricsNamespace"`
}

var formats = []string{"text", "json", "yaml", "markdown", "sarif"}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format:              "text",
		RedactExtensionURLs: true,
		MaxInputBytes:       10 << 20,
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:             "127.0.0.1:8088",
			RateLimit:        600,
			MetricsNamespace: "scrub",
		},
	}
}

// Policy returns the redaction policy described by cfg.
func (c Config) Policy() redact.Policy {
	return redact.Policy{KeepExtensionURLs: !c.RedactExtensionURLs}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %v)", c.Format, formats)
	}
	if c.MaxInputBytes <= 0 {
		return errors.New("maxInputBytes must be positive")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rateLimit must not be negative")
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for scrub.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scrub"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "scrub"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "scrub"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "scrub"), nil
	default:
		return filepath.Join(home, ".config", "scrub"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns the defaults overlaid with the config file. A missing
// file yields the defaults and a nil error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	// Fields absent from the file keep their default values, including
	// booleans that are explicitly set to false.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return renameio.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(&cfg, key, value); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var envKeys = map[string]string{
	"SCRUB_FORMAT":                "format",
	"SCRUB_REDACT_EXTENSION_URLS": "redactExtensionUrls",
	"SCRUB_MAX_INPUT_BYTES":       "maxInputBytes",
	"SCRUB_LOG_LEVEL":             "log.level",
	"SCRUB_ADDR":                  "server.addr",
	"SCRUB_RATE_LIMIT":            "server.rateLimit",
}

func mergeEnv(cfg *Config) error {
	for env, key := range envKeys {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "format":
		cfg.Format = value
	case "redactExtensionUrls":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("redactExtensionUrls must be a boolean: %w", err)
		}
		cfg.RedactExtensionURLs = b
	case "maxInputBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("maxInputBytes must be an integer: %w", err)
		}
		cfg.MaxInputBytes = n
	case "log.level":
		cfg.Log.Level = value
	case "server.addr":
		cfg.Server.Addr = value
	case "server.rateLimit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("server.rateLimit must be an integer: %w", err)
		}
		cfg.Server.RateLimit = n
	case "server.metricsNamespace":
		cfg.Server.MetricsNamespace = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
