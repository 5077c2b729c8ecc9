// Package config handles semdom service configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/veilmark/semdom/delegate"
)

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// DBPath is the SQLite report-history database. Empty disables
	// persistence.
	DBPath string `yaml:"db_path"`
	// AuthHash is a bcrypt hash enabling Basic Auth when set.
	AuthHash string `yaml:"auth_hash"`
	// LogLevel is debug | info | warn | error.
	LogLevel string `yaml:"log_level"`
	// Policy is the category inclusion table used for resolution.
	// Omitted fields fall back to the defaults only when the whole
	// section is absent (a present section is taken literally, so
	// categories can be switched off).
	Policy *delegate.Policy `yaml:"policy"`
}

// Defaults fills unset fields.
func (c *Config) Defaults() {
	if c.Listen == "" {
		c.Listen = ":8097"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ResolvedPolicy returns the configured policy or the defaults.
func (c *Config) ResolvedPolicy() delegate.Policy {
	if c.Policy != nil {
		return *c.Policy
	}
	return delegate.DefaultPolicy()
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Defaults()
	return &c, nil
}

// LoadPolicyFile reads a standalone YAML policy fragment (just the
// category table), used by the CLI's --policy flag.
func LoadPolicyFile(path string) (delegate.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return delegate.Policy{}, err
	}
	var p delegate.Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return delegate.Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return p, nil
}
