package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so that YAML values like "1000ms" or "3s"
// parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level configuration for srvsync.
type Config struct {
	// Template is the path of the configuration template.
	Template string `yaml:"template"`

	// WatchTemplate enables the fsnotify watcher that triggers an immediate
	// reconcile when the template file changes.
	WatchTemplate bool `yaml:"watchTemplate,omitempty"`

	HAProxy   HAProxyConfig   `yaml:"haproxy"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// HAProxyConfig locates the managed HAProxy process.
type HAProxyConfig struct {
	// Config is the destination path of the rendered configuration.
	Config string `yaml:"config"`

	// Binary is the haproxy executable (default: "haproxy").
	Binary string `yaml:"binary,omitempty"`

	// Socket is the stats/admin unix socket path.
	Socket string `yaml:"socket,omitempty"`

	// PIDFile is the daemon pid file used for graceful reloads.
	PIDFile string `yaml:"pidFile,omitempty"`
}

// DiscoveryConfig tunes the resolution cycle.
type DiscoveryConfig struct {
	// Interval between reconciliation cycles (default: 1000ms).
	Interval Duration `yaml:"interval,omitempty"`

	// OnFailure selects what a failed resolution does to a key's cached
	// endpoints: "clear" (default) or "retain".
	OnFailure string `yaml:"onFailure,omitempty"`

	// Timeout bounds the resolution of a single key (default: 3s).
	Timeout Duration `yaml:"timeout,omitempty"`

	// MaxConcurrent bounds the resolver fan-out (default: 8).
	MaxConcurrent int `yaml:"maxConcurrent,omitempty"`
}
