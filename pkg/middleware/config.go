package middleware

import (
	"errors"
	"fmt"

	"github.com/JaimeStill/actigraphy/pkg/envs"
)

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	ExposedHeaders   []string `toml:"exposed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv maps CORS config fields to environment variable names for override injection.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults and environment variable overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	c.loadDefaults()
	if env == nil {
		return nil
	}
	return c.loadEnv(env)
}

// Merge overwrites fields from overlay. Boolean fields always apply; slice and int
// fields only apply when non-zero.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.ExposedHeaders != nil {
		c.ExposedHeaders = overlay.ExposedHeaders
	}
	if overlay.MaxAge >= 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	if c.ExposedHeaders == nil {
		c.ExposedHeaders = []string{"Content-Disposition", "Content-Length"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
}

func (c *CORSConfig) loadEnv(env *CORSEnv) error {
	envs.List(env.Origins, &c.Origins)
	envs.List(env.AllowedMethods, &c.AllowedMethods)
	envs.List(env.AllowedHeaders, &c.AllowedHeaders)
	envs.List(env.ExposedHeaders, &c.ExposedHeaders)

	return errors.Join(
		envs.Bool(env.Enabled, &c.Enabled),
		envs.Bool(env.AllowCredentials, &c.AllowCredentials),
		envs.Int(env.MaxAge, &c.MaxAge),
	)
}

// AuthConfig holds OIDC bearer-token verification settings.
// Verification is skipped entirely when Enabled is false.
type AuthConfig struct {
	Enabled   bool   `toml:"enabled"`
	IssuerURL string `toml:"issuer_url"`
	ClientID  string `toml:"client_id"`
}

// AuthEnv maps auth config fields to environment variable names for override injection.
type AuthEnv struct {
	Enabled   string
	IssuerURL string
	ClientID  string
}

// Finalize applies environment variable overrides and validation.
func (c *AuthConfig) Finalize(env *AuthEnv) error {
	if env != nil {
		envs.String(env.IssuerURL, &c.IssuerURL)
		envs.String(env.ClientID, &c.ClientID)
		if err := envs.Bool(env.Enabled, &c.Enabled); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	c.Enabled = overlay.Enabled
	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

func (c *AuthConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.IssuerURL == "" {
		return fmt.Errorf("issuer_url required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}
