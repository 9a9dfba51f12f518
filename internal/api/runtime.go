package api

import (
	"github.com/JaimeStill/actigraphy/internal/config"
	"github.com/JaimeStill/actigraphy/internal/infrastructure"
	"github.com/JaimeStill/actigraphy/internal/review"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
)

// Runtime extends Infrastructure with the settings the API's domain
// systems and handlers are built from.
type Runtime struct {
	*infrastructure.Infrastructure
	Review        review.Options
	Pagination    pagination.Config
	MaxUploadSize int64
	MaxListSize   int32
}

// NewRuntime creates an API runtime whose logger carries module=api.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Review: review.Options{
			Steps:        cfg.App.SliderSteps,
			TimeFormat:   cfg.App.TimeFormat,
			DefaultSleep: cfg.App.DefaultSleepOffset(),
			CacheSize:    cfg.App.DSTCacheSize,
		},
		Pagination:    cfg.API.Pagination,
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		MaxListSize:   cfg.Storage.MaxListSize,
	}
}
