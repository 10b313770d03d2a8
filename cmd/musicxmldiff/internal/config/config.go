// Package config loads CLI-level settings. Core diff semantics are never
// configured here; the file only covers serving and output options.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-project configuration file.
const ConfigFileName = ".musicxmldiff.yaml"

// Config holds settings for the overlay and serve commands.
type Config struct {
	Addr    string `yaml:"addr"`
	OutDir  string `yaml:"out_dir"`
	Compact bool   `yaml:"compact"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr: ":8080",
	}
}

// Load reads the config file from dir, falling back to defaults when the
// file is absent.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}

// Save writes the config file into dir.
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0o644)
}
