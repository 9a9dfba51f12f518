// Package config loads service configuration from TOML files and
// ACTIGRAPHY_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/actigraphy/pkg/database"
	"github.com/JaimeStill/actigraphy/pkg/envs"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvActigraphyConfig          = "ACTIGRAPHY_CONFIG"
	EnvActigraphyEnv             = "ACTIGRAPHY_ENV"
	EnvActigraphyShutdownTimeout = "ACTIGRAPHY_SHUTDOWN_TIMEOUT"
	EnvActigraphyVersion         = "ACTIGRAPHY_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "ACTIGRAPHY_DB_HOST",
	Port:            "ACTIGRAPHY_DB_PORT",
	Name:            "ACTIGRAPHY_DB_NAME",
	User:            "ACTIGRAPHY_DB_USER",
	Password:        "ACTIGRAPHY_DB_PASSWORD",
	SSLMode:         "ACTIGRAPHY_DB_SSL_MODE",
	MaxOpenConns:    "ACTIGRAPHY_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ACTIGRAPHY_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ACTIGRAPHY_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ACTIGRAPHY_DB_CONN_TIMEOUT",
	PingAttempts:    "ACTIGRAPHY_DB_PING_ATTEMPTS",
	PingDelay:       "ACTIGRAPHY_DB_PING_DELAY",
}

var storageEnv = &storage.Env{
	Backend:          "ACTIGRAPHY_STORAGE_BACKEND",
	Root:             "ACTIGRAPHY_STORAGE_ROOT",
	ContainerName:    "ACTIGRAPHY_STORAGE_CONTAINER_NAME",
	ConnectionString: "ACTIGRAPHY_STORAGE_CONNECTION_STRING",
	ServiceURL:       "ACTIGRAPHY_STORAGE_SERVICE_URL",
	MaxListSize:      "ACTIGRAPHY_STORAGE_MAX_LIST_SIZE",
	InitAttempts:     "ACTIGRAPHY_STORAGE_INIT_ATTEMPTS",
}

// Config is the root configuration for the review server, the ingest CLI,
// and the migration tool.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	App             AppConfig       `toml:"app"`
	Ingest          IngestConfig    `toml:"ingest"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ACTIGRAPHY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvActigraphyEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config, applies the overlay for ACTIGRAPHY_ENV, and
// finalizes all values.
//
// The base file is ACTIGRAPHY_CONFIG when set, else config.toml in the
// working directory. A missing default file is not an error: defaults and
// environment variables then provide everything. The overlay
// config.<env>.toml is looked up next to the base file. Unknown keys in
// either file are rejected.
func Load() (*Config, error) {
	base, explicit := BaseConfigFile, false
	if v := os.Getenv(EnvActigraphyConfig); v != "" {
		base, explicit = v, true
	}

	cfg, err := load(base)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		cfg = &Config{}
	case err != nil:
		return nil, err
	}

	if path := overlayPath(filepath.Dir(base)); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.App.Merge(&overlay.App)
	c.Ingest.Merge(&overlay.Ingest)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.App.Finalize(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Ingest.Finalize(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	envs.String(EnvActigraphyShutdownTimeout, &c.ShutdownTimeout)
	envs.String(EnvActigraphyVersion, &c.Version)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	env := os.Getenv(EnvActigraphyEnv)
	if env == "" {
		return ""
	}
	path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
