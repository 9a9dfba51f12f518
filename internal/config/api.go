package config

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/actigraphy/pkg/envs"
	"github.com/JaimeStill/actigraphy/pkg/formatting"
	"github.com/JaimeStill/actigraphy/pkg/middleware"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ACTIGRAPHY_CORS_ENABLED",
	Origins:          "ACTIGRAPHY_CORS_ORIGINS",
	AllowedMethods:   "ACTIGRAPHY_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ACTIGRAPHY_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "ACTIGRAPHY_CORS_EXPOSED_HEADERS",
	AllowCredentials: "ACTIGRAPHY_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ACTIGRAPHY_CORS_MAX_AGE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:   "ACTIGRAPHY_AUTH_ENABLED",
	IssuerURL: "ACTIGRAPHY_AUTH_ISSUER_URL",
	ClientID:  "ACTIGRAPHY_AUTH_CLIENT_ID",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "ACTIGRAPHY_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ACTIGRAPHY_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, auth, and pagination settings.
// MaxUploadSize bounds the multipart import form.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Auth          middleware.AuthConfig `toml:"auth"`
	Pagination    pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return int64(256 * formatting.MB)
	}
	return int64(size)
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS, auth, and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "256MB"
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 {
		return fmt.Errorf("base_path must be a single-level path such as /api: %q", c.BasePath)
	}
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	return nil
}

func (c *APIConfig) loadEnv() {
	envs.String("ACTIGRAPHY_API_BASE_PATH", &c.BasePath)
	envs.String("ACTIGRAPHY_API_MAX_UPLOAD_SIZE", &c.MaxUploadSize)
}
