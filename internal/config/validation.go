package config

import (
	"fmt"
)

// Validate checks that the configuration is internally consistent and names
// everything the sync daemon needs.
func (c Config) Validate() error {
	if c.Template == "" {
		return fmt.Errorf("template path is required")
	}
	if c.HAProxy.Config == "" {
		return fmt.Errorf("haproxy.config path is required")
	}
	if c.Template == c.HAProxy.Config {
		return fmt.Errorf("template and haproxy.config must be different paths")
	}
	if c.Discovery.Interval.Std() <= 0 {
		return fmt.Errorf("discovery.interval must be positive")
	}
	if c.Discovery.Timeout.Std() <= 0 {
		return fmt.Errorf("discovery.timeout must be positive")
	}
	if c.Discovery.MaxConcurrent <= 0 {
		return fmt.Errorf("discovery.maxConcurrent must be positive")
	}
	switch c.Discovery.OnFailure {
	case "clear", "retain":
	default:
		return fmt.Errorf("discovery.onFailure must be %q or %q, got %q", "clear", "retain", c.Discovery.OnFailure)
	}
	return nil
}
