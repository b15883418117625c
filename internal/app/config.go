package app

import "time"

// Config holds the process-level options collected from the command line.
// File-based configuration lives in internal/config; these fields override
// it where set.
type Config struct {
	// Debug enables verbose logging.
	Debug bool

	// ConfigPath is the srvsync configuration file.
	ConfigPath string

	// Template overrides the template path from the config file when set.
	Template string

	// Interval overrides the reconcile interval from the config file when
	// non-zero.
	Interval time.Duration
}

// NewConfig creates the application configuration.
func NewConfig(debug bool, configPath, template string, interval time.Duration) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		Template:   template,
		Interval:   interval,
	}
}
