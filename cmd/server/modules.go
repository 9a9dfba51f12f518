package main

import (
	"context"
	"net/http"

	"github.com/JaimeStill/actigraphy/internal/api"
	"github.com/JaimeStill/actigraphy/internal/config"
	"github.com/JaimeStill/actigraphy/internal/infrastructure"
	"github.com/JaimeStill/actigraphy/pkg/handlers"
	"github.com/JaimeStill/actigraphy/pkg/module"
)

// Modules holds the prefixed modules mounted on the server router.
type Modules struct {
	API *module.Module
}

func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type probeStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// buildRouter serves the liveness and readiness probes outside any module,
// so they bypass CORS and auth.
func buildRouter(infra *infrastructure.Infrastructure, version string) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, probeStatus{Status: "ok", Version: version})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			status := probeStatus{Status: "not ready"}
			if err := infra.Lifecycle.Err(); err != nil {
				status.Error = err.Error()
			}
			handlers.RespondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, probeStatus{Status: "ready"})
	})

	return router
}
