package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "**/*.ruleset.cue", cfg.Rulesets.Glob)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
rulesets:
  dir: /srv/rulesets
  glob: "**/*.cue"
  debounce: 2s
log:
  format: json
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/rulesets", cfg.Rulesets.Dir)
	assert.Equal(t, "**/*.cue", cfg.Rulesets.Glob)
	assert.Equal(t, 2*time.Second, cfg.Rulesets.Debounce)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level, "unset fields keep their defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{Server: ServerConfig{Port: 1234}, Log: LogConfig{Level: "debug"}})
	assert.Equal(t, 1234, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	cfg.Merge(nil)
	assert.Equal(t, 1234, cfg.Server.Port)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{"PORT": "7000", "RULESET_GLOB": "*.ruleset.cue", "LOG_LEVEL": "WARN"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "*.ruleset.cue", cfg.Rulesets.Glob)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "rulesets", cfg.Rulesets.Dir)

	env["PORT"] = "eighty"
	assert.Error(t, DefaultConfig().ApplyEnv(lookup))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"dir", func(c *Config) { c.Rulesets.Dir = "" }},
		{"glob", func(c *Config) { c.Rulesets.Glob = "[" }},
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"sessions", func(c *Config) { c.Sessions.IdleTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "ruleset", "demo")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"ruleset":"demo"`)
}
