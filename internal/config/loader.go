package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"srvsync/pkg/logging"
)

// LoadConfig loads configuration from the given YAML file, layered over the
// built-in defaults. A missing file is not an error; the defaults are used
// and validation decides whether they are sufficient.
func LoadConfig(path string) (Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "no config file at %s, using defaults", path)
			return config, nil
		}
		return Config{}, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("cannot parse config %s: %w", path, err)
	}

	logging.Info("Config", "loaded configuration from %s", path)
	return config, nil
}
