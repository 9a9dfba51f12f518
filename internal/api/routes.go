package api

import (
	"net/http"

	"github.com/JaimeStill/actigraphy/internal/export"
	"github.com/JaimeStill/actigraphy/internal/ingest"
	"github.com/JaimeStill/actigraphy/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) []string {
	return routes.Register(
		mux,
		domain.Subjects.Handler().Routes(),
		domain.Days.Handler().Routes(),
		domain.Review.Handler().Routes(),
		export.NewHandler(domain.Exports, runtime.Logger).Routes(),
		ingest.NewHandler(domain.Ingest, runtime.Storage, runtime.Logger, runtime.MaxUploadSize).Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger, runtime.MaxListSize).routes(),
	)
}
