package subjects

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/actigraphy/pkg/handlers"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
	"github.com/JaimeStill/actigraphy/pkg/routes"
)

// Handler provides the read endpoints for subjects. Mutations go through
// the review service so that exports and caches follow them.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "subjects"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for subject endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/subjects",
		Routes: []routes.Route{
			{Method: "GET", Path: "", Handler: h.List},
			{Method: "GET", Path: "/{name}", Handler: h.Find},
		},
	}
}

// List returns a paginated list of subjects. The search parameter matches names.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single subject by name.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Find(r.Context(), r.PathValue("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}
