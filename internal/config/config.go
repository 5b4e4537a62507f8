// Package config provides configuration loading and defaults for the
// daygrid server.
//
// Configuration is loaded from a TOML file in the data directory. Defaults
// cover everything, so a missing file is a valid (if boring) deployment.
// The render path itself never consults the file system: the loaded Config
// is translated into component options at startup and on reload.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/daygrid/daygrid/internal/atomicfile"
	"github.com/daygrid/daygrid/internal/paths"
	"github.com/daygrid/daygrid/internal/theme"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Server holds HTTP listener settings.
	Server ServerConfig `toml:"server"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Pictogram holds glyph-asset CDN settings.
	Pictogram PictogramConfig `toml:"pictogram"`
	// Fonts holds typeface selection settings.
	Fonts FontsConfig `toml:"fonts"`
	// Render holds wallpaper rendering settings.
	Render RenderConfig `toml:"render"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Listen is the address the HTTP server binds to.
	Listen string `toml:"listen"`
	// ShutdownTimeoutSeconds bounds graceful shutdown on SIGTERM.
	ShutdownTimeoutSeconds int `toml:"shutdown_timeout_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// PictogramConfig holds glyph-asset CDN settings.
type PictogramConfig struct {
	// BaseURL is the asset tree pictograms are fetched from; empty
	// selects the built-in Twemoji CDN.
	BaseURL string `toml:"base_url"`
	// TimeoutSeconds bounds a single asset fetch.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// NegativeTTLMinutes is how long a failed fetch is remembered
	// before the glyph is retried.
	NegativeTTLMinutes int `toml:"negative_ttl_minutes"`
	// MaxEntries bounds the in-memory cache.
	MaxEntries int `toml:"max_entries"`
}

// FontsConfig holds typeface selection settings. Local files under the data
// directory's fonts/ folder win over downloads.
type FontsConfig struct {
	// Text is the download spec for the label typeface
	// ("google:FAMILY:WEIGHT"); empty disables the download step.
	Text string `toml:"text"`
	// Signature is the download spec for the decorative signature
	// typeface.
	Signature string `toml:"signature"`
	// TextPatterns are glob patterns matched against the fonts
	// directory for the label typeface, first match wins.
	TextPatterns []string `toml:"text_patterns"`
	// SignaturePatterns are glob patterns for the signature typeface.
	SignaturePatterns []string `toml:"signature_patterns"`
}

// RenderConfig holds wallpaper rendering settings.
type RenderConfig struct {
	// SignatureMaxRunes truncates overlong signature strings.
	SignatureMaxRunes int `toml:"signature_max_runes"`
	// Colors overrides individual palette roles on every theme,
	// e.g. active = "#FF0000". Unknown roles and bad values are
	// ignored.
	Colors map[string]string `toml:"colors,omitempty"`
}

// ///////////////////////////////////////////////
// Defaults
// ///////////////////////////////////////////////

// CurrentVersion is the config schema version this build reads and writes.
const CurrentVersion = 1

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			Listen:                 ":8475",
			ShutdownTimeoutSeconds: 10,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Pictogram: PictogramConfig{
			TimeoutSeconds:     5,
			NegativeTTLMinutes: 5,
			MaxEntries:         256,
		},
		Fonts: FontsConfig{
			Text:              "google:Roboto:400",
			Signature:         "google:Caveat:700",
			TextPatterns:      []string{"text.ttf", "text.otf"},
			SignaturePatterns: []string{"signature.ttf", "signature.otf"},
		},
		Render: RenderConfig{
			SignatureMaxRunes: 20,
		},
	}
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads the configuration from dataDir/config.toml, overlaying user
// values on the defaults. A missing file returns the defaults; a malformed
// or invalid file is an error.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk as TOML using an atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable
// ranges.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if c.Server.ShutdownTimeoutSeconds < 1 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be at least 1, got %d", c.Server.ShutdownTimeoutSeconds)
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1, got %d", c.Log.MaxSizeMB)
	}
	if c.Pictogram.TimeoutSeconds < 1 {
		return fmt.Errorf("pictogram.timeout_seconds must be at least 1, got %d", c.Pictogram.TimeoutSeconds)
	}
	if c.Pictogram.MaxEntries < 1 {
		return fmt.Errorf("pictogram.max_entries must be at least 1, got %d", c.Pictogram.MaxEntries)
	}
	if c.Render.SignatureMaxRunes < 1 {
		return fmt.Errorf("render.signature_max_runes must be at least 1, got %d", c.Render.SignatureMaxRunes)
	}
	for role, hex := range c.Render.Colors {
		if _, err := theme.ParseHex(hex); err != nil {
			return fmt.Errorf("render.colors.%s: %w", role, err)
		}
	}
	return nil
}

// ///////////////////////////////////////////////
// Derived Values
// ///////////////////////////////////////////////

// PictogramTimeout returns the asset fetch timeout as a duration.
func (c *Config) PictogramTimeout() time.Duration {
	return time.Duration(c.Pictogram.TimeoutSeconds) * time.Second
}

// PictogramNegativeTTL returns the failed-fetch retry window as a duration.
func (c *Config) PictogramNegativeTTL() time.Duration {
	return time.Duration(c.Pictogram.NegativeTTLMinutes) * time.Minute
}

// ShutdownTimeout returns the graceful shutdown bound as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
