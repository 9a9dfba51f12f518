// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/JaimeStill/actigraphy/internal/config"
	"github.com/JaimeStill/actigraphy/internal/infrastructure"
	"github.com/JaimeStill/actigraphy/pkg/middleware"
	"github.com/JaimeStill/actigraphy/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// With auth enabled the issuer is discovered before any route is served.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	patterns := registerRoutes(mux, domain, runtime)
	runtime.Logger.Debug("routes registered", "count", len(patterns), "patterns", patterns)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, err
		}
		m.Use(middleware.Auth(verifier, runtime.Logger))
	}

	return m, nil
}
