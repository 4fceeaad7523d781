package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration, fills defaults and validates its structure.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := ValidateConfigStructure(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads path, falling back to DefaultConfig when the file
// does not exist. The boolean reports whether the fallback was used.
func LoadConfigOrDefault(path string) (*Config, bool, error) {
	cfg, err := LoadConfigFromFile(path)
	if err == nil {
		return cfg, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	cfg = DefaultConfig()
	ApplyDefaults(cfg)
	return cfg, true, nil
}
