package storage

import (
	"errors"
	"fmt"

	"github.com/JaimeStill/actigraphy/pkg/envs"
)

// MaxListCap is the upper bound on blobs returned by a single List call.
const MaxListCap int32 = 5000

// Backend names accepted by Config.Backend.
const (
	BackendLocal = "local"
	BackendAzure = "azure"
)

// Config holds blob storage parameters for the local filesystem or Azure backends.
// The Azure backend authenticates with ConnectionString when set, otherwise
// with the default Azure credential chain against ServiceURL.
type Config struct {
	Backend          string `toml:"backend"`
	Root             string `toml:"root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	MaxListSize      int32  `toml:"max_list_size"`
	InitAttempts     int    `toml:"init_attempts"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend          string
	Root             string
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	MaxListSize      string
	InitAttempts     string
}

// Finalize applies defaults, environment variable overrides, and validation.
// MaxListSize is clamped to MaxListCap after overrides are applied.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	c.MaxListSize = min(c.MaxListSize, MaxListCap)
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for _, f := range []struct{ dst *string; v string }{
		{&c.Backend, overlay.Backend},
		{&c.Root, overlay.Root},
		{&c.ContainerName, overlay.ContainerName},
		{&c.ConnectionString, overlay.ConnectionString},
		{&c.ServiceURL, overlay.ServiceURL},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
	if overlay.InitAttempts != 0 {
		c.InitAttempts = overlay.InitAttempts
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
	if c.Root == "" {
		c.Root = "data/storage"
	}
	if c.ContainerName == "" {
		c.ContainerName = "actigraphy"
	}
	if c.MaxListSize <= 0 {
		c.MaxListSize = 50
	}
	if c.InitAttempts <= 0 {
		c.InitAttempts = 5
	}
}

func (c *Config) loadEnv(env *Env) error {
	envs.String(env.Backend, &c.Backend)
	envs.String(env.Root, &c.Root)
	envs.String(env.ContainerName, &c.ContainerName)
	envs.String(env.ConnectionString, &c.ConnectionString)
	envs.String(env.ServiceURL, &c.ServiceURL)

	return errors.Join(
		envs.Int32(env.MaxListSize, &c.MaxListSize),
		envs.Int(env.InitAttempts, &c.InitAttempts),
	)
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.Root == "" {
			return fmt.Errorf("root required for local backend")
		}
	case BackendAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.ServiceURL == "" {
			return fmt.Errorf("connection_string or service_url required")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	if c.MaxListSize < 1 {
		return fmt.Errorf("max_list_size must be positive")
	}
	if c.InitAttempts < 1 {
		return fmt.Errorf("init_attempts must be positive")
	}
	return nil
}
