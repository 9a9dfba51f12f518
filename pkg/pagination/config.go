// Package pagination provides types and utilities for paginated data queries.
package pagination

import (
	"fmt"

	"github.com/JaimeStill/actigraphy/pkg/envs"
)

// PageSizeCeiling is the largest accepted max_page_size.
const PageSizeCeiling = 1000

const (
	defaultPageSize = 20
	defaultMaxPage  = 100
)

// Config holds pagination settings including page size limits.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables that override Config.
// Empty names are skipped.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, environment variable overrides, and validation.
// A set but non-numeric override is an error.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize != 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize != 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = defaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = defaultMaxPage
	}
}

func (c *Config) loadEnv(env *ConfigEnv) error {
	if err := envs.Int(env.DefaultPageSize, &c.DefaultPageSize); err != nil {
		return err
	}
	return envs.Int(env.MaxPageSize, &c.MaxPageSize)
}

func (c *Config) validate() error {
	switch {
	case c.DefaultPageSize < 1:
		return fmt.Errorf("default_page_size must be positive")
	case c.MaxPageSize < 1:
		return fmt.Errorf("max_page_size must be positive")
	case c.MaxPageSize > PageSizeCeiling:
		return fmt.Errorf("max_page_size cannot exceed %d", PageSizeCeiling)
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("default_page_size cannot exceed max_page_size")
	}
	return nil
}
