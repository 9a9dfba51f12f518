package review

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/pkg/handlers"
	"github.com/JaimeStill/actigraphy/pkg/routes"
)

// Handler provides HTTP endpoints for the review workflow.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// DragRequest is the body of a window move.
type DragRequest struct {
	Points [2]int `json:"points"`
}

// FinishedRequest is the body of the finished toggle.
type FinishedRequest struct {
	IsFinished bool `json:"is_finished"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "review"),
	}
}

// Routes returns the route group definition for review endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/subjects/{name}",
		Routes: []routes.Route{
			{Method: "DELETE", Path: "", Handler: h.Delete},
			{Method: "PUT", Path: "/finished", Handler: h.SetFinished},
			{Method: "GET", Path: "/days/{index}/view", Handler: h.View},
			{Method: "GET", Path: "/days/{index}/datapoints", Handler: h.Datapoints},
			{Method: "PUT", Path: "/days/{index}/flags", Handler: h.SetFlags},
			{Method: "POST", Path: "/days/{index}/sleep-times", Handler: h.AddInterval},
			{Method: "DELETE", Path: "/days/{index}/sleep-times/last", Handler: h.RemoveInterval},
			{Method: "PUT", Path: "/days/{index}/sleep-times/{id}", Handler: h.Drag},
		},
	}
}

// View returns the rendered review of one day.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	index, err := handlers.PathInt(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	v, err := h.sys.View(r.Context(), r.PathValue("name"), index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Datapoints returns the raw samples of a day's review window.
func (h *Handler) Datapoints(w http.ResponseWriter, r *http.Request) {
	index, err := handlers.PathInt(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	points, err := h.sys.Datapoints(r.Context(), r.PathValue("name"), index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, points)
}

// Drag moves a window to the requested slider points.
func (h *Handler) Drag(w http.ResponseWriter, r *http.Request) {
	index, err := handlers.PathInt(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req, err := handlers.DecodeJSON[DragRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	res, err := h.sys.Drag(r.Context(), r.PathValue("name"), index, id, req.Points)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, res)
}

// AddInterval appends a default window to the day.
func (h *Handler) AddInterval(w http.ResponseWriter, r *http.Request) {
	index, err := handlers.PathInt(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	res, err := h.sys.AddInterval(r.Context(), r.PathValue("name"), index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, res)
}

// RemoveInterval deletes the most recently created window of the day.
func (h *Handler) RemoveInterval(w http.ResponseWriter, r *http.Request) {
	index, err := handlers.PathInt(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	st, err := h.sys.RemoveInterval(r.Context(), r.PathValue("name"), index)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, st)
}

// SetFlags updates the review flags of a day.
func (h *Handler) SetFlags(w http.ResponseWriter, r *http.Request) {
	index, err := handlers.PathInt(r, "index")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	cmd, err := handlers.DecodeJSON[days.FlagsCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	d, err := h.sys.SetFlags(r.Context(), r.PathValue("name"), index, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

// SetFinished marks the subject's review as finished or reopens it.
func (h *Handler) SetFinished(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[FinishedRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.SetFinished(r.Context(), r.PathValue("name"), req.IsFinished)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Delete removes the subject with all of its data and exports.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("name")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
