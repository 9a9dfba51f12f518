package days

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/actigraphy/pkg/handlers"
	"github.com/JaimeStill/actigraphy/pkg/routes"
)

// Handler provides HTTP endpoints for reading a subject's days.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// DayList is the response body of the list endpoint.
type DayList struct {
	Subject string `json:"subject"`
	Days    []Day  `json:"days"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "days"),
	}
}

// Routes returns the route group definition for day endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/subjects/{name}/days",
		Routes: []routes.Route{
			{Method: "GET", Path: "", Handler: h.List},
			{Method: "GET", Path: "/{index}", Handler: h.Find},
		},
	}
}

// List returns every day of the subject in date order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	items, err := h.sys.List(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, DayList{Subject: name, Days: items})
}

// Find returns the day at the zero-based index path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	index, err := handlers.PathInt(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	d, err := h.sys.Find(r.Context(), r.PathValue("name"), index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}
