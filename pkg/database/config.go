package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/actigraphy/pkg/envs"
)

// Config holds PostgreSQL connection parameters. Durations are Go duration
// strings; PingAttempts and PingDelay govern the startup connection retry.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
	PingAttempts    int    `toml:"ping_attempts"`
	PingDelay       string `toml:"ping_delay"`
}

// Env names the environment variables that override Config.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
	PingAttempts    string
	PingDelay       string
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration { return duration(c.ConnMaxLifetime) }
func (c *Config) ConnTimeoutDuration() time.Duration     { return duration(c.ConnTimeout) }
func (c *Config) PingDelayDuration() time.Duration       { return duration(c.PingDelay) }

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Dsn returns a keyword/value connection string. Values that are empty or
// hold spaces, quotes or backslashes are single-quoted.
func (c *Config) Dsn() string {
	pairs := []struct{ key, value string }{
		{"host", c.Host},
		{"port", fmt.Sprint(c.Port)},
		{"dbname", c.Name},
		{"user", c.User},
		{"password", c.Password},
		{"sslmode", c.SSLMode},
	}

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + "=" + dsnValue(p.value)
	}
	return strings.Join(parts, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// URL returns the connection parameters as a postgres:// URL, the form
// expected by the migration driver.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	merge(&c.Host, overlay.Host)
	merge(&c.Port, overlay.Port)
	merge(&c.Name, overlay.Name)
	merge(&c.User, overlay.User)
	merge(&c.Password, overlay.Password)
	merge(&c.SSLMode, overlay.SSLMode)
	merge(&c.MaxOpenConns, overlay.MaxOpenConns)
	merge(&c.MaxIdleConns, overlay.MaxIdleConns)
	merge(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	merge(&c.ConnTimeout, overlay.ConnTimeout)
	merge(&c.PingAttempts, overlay.PingAttempts)
	merge(&c.PingDelay, overlay.PingDelay)
}

// merge sets *dst to v unless v is the zero value.
func merge[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// fallback sets *dst to def while *dst is the zero value.
func fallback[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}

func (c *Config) loadDefaults() {
	fallback(&c.Host, "localhost")
	fallback(&c.Port, 5432)
	fallback(&c.SSLMode, "disable")
	fallback(&c.MaxOpenConns, 25)
	fallback(&c.MaxIdleConns, 5)
	fallback(&c.ConnMaxLifetime, "15m")
	fallback(&c.ConnTimeout, "5s")
	fallback(&c.PingAttempts, 5)
	fallback(&c.PingDelay, "1s")
}

func (c *Config) loadEnv(env *Env) error {
	envs.String(env.Host, &c.Host)
	envs.String(env.Name, &c.Name)
	envs.String(env.User, &c.User)
	envs.String(env.Password, &c.Password)
	envs.String(env.SSLMode, &c.SSLMode)
	envs.String(env.ConnMaxLifetime, &c.ConnMaxLifetime)
	envs.String(env.ConnTimeout, &c.ConnTimeout)
	envs.String(env.PingDelay, &c.PingDelay)

	return errors.Join(
		envs.Int(env.Port, &c.Port),
		envs.Int(env.MaxOpenConns, &c.MaxOpenConns),
		envs.Int(env.MaxIdleConns, &c.MaxIdleConns),
		envs.Int(env.PingAttempts, &c.PingAttempts),
	)
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.User == "" {
		return fmt.Errorf("user required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot exceed max_open_conns")
	}
	for _, d := range []struct{ key, value string }{
		{"conn_max_lifetime", c.ConnMaxLifetime},
		{"conn_timeout", c.ConnTimeout},
		{"ping_delay", c.PingDelay},
	} {
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}
	if c.PingAttempts < 1 {
		return fmt.Errorf("ping_attempts must be positive")
	}
	return nil
}
