package export

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/actigraphy/pkg/handlers"
	"github.com/JaimeStill/actigraphy/pkg/routes"
)

// Handler serves export downloads. Every download republishes the artefact
// so that storage matches the database.
type Handler struct {
	publisher *Publisher
	logger    *slog.Logger
}

// NewHandler creates a Handler over publisher.
func NewHandler(publisher *Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		publisher: publisher,
		logger:    logger.With("handler", "exports"),
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/subjects/{name}/exports",
		Routes: []routes.Route{
			{Method: "GET", Path: "/{kind}", Handler: h.Download},
		},
	}
}

// Download publishes and streams one artefact as a CSV attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	kind, err := ParseKind(r.PathValue("kind"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	name := r.PathValue("name")
	if err := h.publisher.Publish(r.Context(), name, kind); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	blob, err := h.publisher.storage.Download(r.Context(), kind.Key(name))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(kind.Key(name))))
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Error("export stream failed", "subject", name, "kind", kind, "error", err)
	}
}
