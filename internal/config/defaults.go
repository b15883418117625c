package config

import "time"

// GetDefaultConfig returns the built-in defaults. A config file and flags
// override individual fields.
func GetDefaultConfig() Config {
	return Config{
		Template:      "/etc/srvsync/haproxy.cfg.tmpl",
		WatchTemplate: true,
		HAProxy: HAProxyConfig{
			Config:  "/etc/haproxy/haproxy.cfg",
			Binary:  "haproxy",
			Socket:  "/var/run/haproxy.sock",
			PIDFile: "/var/run/haproxy.pid",
		},
		Discovery: DiscoveryConfig{
			Interval:      Duration(1000 * time.Millisecond),
			OnFailure:     "clear",
			Timeout:       Duration(3 * time.Second),
			MaxConcurrent: 8,
		},
	}
}
