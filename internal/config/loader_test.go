package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, GetDefaultConfig(), config)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
template: /opt/lb/haproxy.cfg.tmpl
haproxy:
  config: /opt/lb/haproxy.cfg
  socket: /tmp/haproxy.sock
discovery:
  interval: 250ms
  onFailure: retain
  timeout: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/lb/haproxy.cfg.tmpl", config.Template)
	assert.Equal(t, "/opt/lb/haproxy.cfg", config.HAProxy.Config)
	assert.Equal(t, "/tmp/haproxy.sock", config.HAProxy.Socket)
	assert.Equal(t, 250*time.Millisecond, config.Discovery.Interval.Std())
	assert.Equal(t, "retain", config.Discovery.OnFailure)
	assert.Equal(t, time.Second, config.Discovery.Timeout.Std())

	// Untouched fields keep their defaults.
	assert.Equal(t, "haproxy", config.HAProxy.Binary)
	assert.Equal(t, 8, config.Discovery.MaxConcurrent)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("template: [broken"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("discovery:\n  interval: soon\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate(t *testing.T) {
	valid := GetDefaultConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing template", func(c *Config) { c.Template = "" }},
		{"missing haproxy config", func(c *Config) { c.HAProxy.Config = "" }},
		{"template equals destination", func(c *Config) { c.HAProxy.Config = c.Template }},
		{"zero interval", func(c *Config) { c.Discovery.Interval = 0 }},
		{"zero timeout", func(c *Config) { c.Discovery.Timeout = 0 }},
		{"zero fan-out", func(c *Config) { c.Discovery.MaxConcurrent = 0 }},
		{"unknown failure policy", func(c *Config) { c.Discovery.OnFailure = "panic" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := GetDefaultConfig()
			test.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}
