package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/actigraphy/pkg/envs"
)

const (
	EnvServerHost            = "ACTIGRAPHY_SERVER_HOST"
	EnvServerPort            = "ACTIGRAPHY_SERVER_PORT"
	EnvServerReadTimeout     = "ACTIGRAPHY_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "ACTIGRAPHY_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "ACTIGRAPHY_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout = "ACTIGRAPHY_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters. WriteTimeout covers the
// longest export download; ShutdownTimeout bounds draining in-flight edits.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration     { return duration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration    { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration     { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return duration(c.ShutdownTimeout) }

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, t := range c.timeouts() {
		if v := *t.field(overlay); v != "" {
			*t.field(c) = v
		}
	}
}

type timeout struct {
	key   string
	env   string
	def   string
	field func(*ServerConfig) *string
}

func (c *ServerConfig) timeouts() []timeout {
	return []timeout{
		{"read_timeout", EnvServerReadTimeout, "1m", func(s *ServerConfig) *string { return &s.ReadTimeout }},
		{"write_timeout", EnvServerWriteTimeout, "15m", func(s *ServerConfig) *string { return &s.WriteTimeout }},
		{"idle_timeout", EnvServerIdleTimeout, "2m", func(s *ServerConfig) *string { return &s.IdleTimeout }},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", func(s *ServerConfig) *string { return &s.ShutdownTimeout }},
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	for _, t := range c.timeouts() {
		if f := t.field(c); *f == "" {
			*f = t.def
		}
	}
}

func (c *ServerConfig) loadEnv() error {
	envs.String(EnvServerHost, &c.Host)
	for _, t := range c.timeouts() {
		envs.String(t.env, t.field(c))
	}
	return envs.Int(EnvServerPort, &c.Port)
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, t := range c.timeouts() {
		d, err := time.ParseDuration(*t.field(c))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", t.key, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", t.key)
		}
	}
	return nil
}
