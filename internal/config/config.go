// Package config provides configuration loading for the ruleset view server.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Rulesets RulesetsConfig `yaml:"rulesets"`
	Log      LogConfig      `yaml:"log"`
	Sessions SessionsConfig `yaml:"sessions"`
	Events   EventsConfig   `yaml:"events"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	// Port is the TCP port to listen on (default: 8080)
	Port int `yaml:"port"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RulesetsConfig configures where rulesets are found
type RulesetsConfig struct {
	// Dir is the directory rulesets and namespace files are read from
	Dir string `yaml:"dir"`
	// Glob selects ruleset files below Dir; "**" is supported
	Glob string `yaml:"glob"`
	// Watch reloads rulesets when their files change
	Watch bool `yaml:"watch"`
	// Debounce is how long to wait for more changes before reloading
	Debounce time.Duration `yaml:"debounce"`
	// Language is used when a request names no language
	Language string `yaml:"language"`
}

// LogConfig configures structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is "text" or "json"
	Format string `yaml:"format"`
}

// SessionsConfig configures live editing sessions
type SessionsConfig struct {
	MaxAge      time.Duration `yaml:"max_age"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// EventsConfig configures the in-process event bus
type EventsConfig struct {
	Buffer int `yaml:"buffer"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Rulesets: RulesetsConfig{
			Dir:      "rulesets",
			Glob:     "**/*.ruleset.cue",
			Watch:    true,
			Debounce: 500 * time.Millisecond,
			Language: "en",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Sessions: SessionsConfig{
			MaxAge:      24 * time.Hour,
			IdleTimeout: 30 * time.Minute,
		},
		Events: EventsConfig{
			Buffer: 256,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Rulesets.Dir == "" {
		return fmt.Errorf("rulesets.dir is required")
	}
	if !doublestar.ValidatePattern(c.Rulesets.Glob) {
		return fmt.Errorf("rulesets.glob %q is not a valid pattern", c.Rulesets.Glob)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Sessions.IdleTimeout <= 0 || c.Sessions.MaxAge <= 0 {
		return fmt.Errorf("sessions.max_age and sessions.idle_timeout must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}

	if other.Rulesets.Dir != "" {
		c.Rulesets.Dir = other.Rulesets.Dir
	}
	if other.Rulesets.Glob != "" {
		c.Rulesets.Glob = other.Rulesets.Glob
	}
	if other.Rulesets.Debounce != 0 {
		c.Rulesets.Debounce = other.Rulesets.Debounce
	}
	if other.Rulesets.Language != "" {
		c.Rulesets.Language = other.Rulesets.Language
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	if other.Sessions.MaxAge != 0 {
		c.Sessions.MaxAge = other.Sessions.MaxAge
	}
	if other.Sessions.IdleTimeout != 0 {
		c.Sessions.IdleTimeout = other.Sessions.IdleTimeout
	}

	if other.Events.Buffer != 0 {
		c.Events.Buffer = other.Events.Buffer
	}
}

// ApplyEnv overrides settings from PORT, RULESET_DIR, RULESET_GLOB and
// LOG_LEVEL. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("RULESET_DIR"); ok && v != "" {
		c.Rulesets.Dir = v
	}
	if v, ok := lookup("RULESET_GLOB"); ok && v != "" {
		c.Rulesets.Glob = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
