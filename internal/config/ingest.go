package config

import (
	"fmt"

	"github.com/JaimeStill/actigraphy/pkg/envs"
)

const (
	EnvIngestDataDir = "ACTIGRAPHY_INGEST_DATA_DIR"
	EnvIngestWorkers = "ACTIGRAPHY_INGEST_WORKERS"
)

// IngestConfig holds batch import settings. DataDir holds one output_<id>
// directory per subject.
type IngestConfig struct {
	DataDir string `toml:"data_dir"`
	Workers int    `toml:"workers"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *IngestConfig) Finalize() error {
	c.loadDefaults()
	envs.String(EnvIngestDataDir, &c.DataDir)
	if err := envs.Int(EnvIngestWorkers, &c.Workers); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *IngestConfig) Merge(overlay *IngestConfig) {
	if overlay.DataDir != "" {
		c.DataDir = overlay.DataDir
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *IngestConfig) loadDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

func (c *IngestConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
