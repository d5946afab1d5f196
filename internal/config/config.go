// Package config loads and validates the run configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the run configuration: which owner and repositories to
// report on, and where to write the rendered report. Values come from
// a YAML file with environment-variable overrides.
type Config struct {
	Owner        string   `yaml:"owner" env:"REPORT_OWNER"`
	Repositories []string `yaml:"repositories" env:"REPORT_REPOSITORIES" env-separator:","`
	Output       string   `yaml:"output" env:"REPORT_OUTPUT"`
}

// Load reads the configuration from path and validates it. A missing
// owner or an empty repository list is a fatal startup condition.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the core relies on.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return errors.New("config: owner must be set")
	}
	if len(c.Repositories) == 0 {
		return errors.New("config: repositories must not be empty")
	}
	return nil
}
