package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/actigraphy/pkg/handlers"
	"github.com/JaimeStill/actigraphy/pkg/routes"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

var errPrefixConflict = errors.New("prefix and subject are mutually exclusive")

// storageHandler exposes the blob store read-only: published sleep logs
// under <subject>/logs/ and staged uploads under the ingest prefix.
type storageHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newStorageHandler(store storage.System, logger *slog.Logger, maxListSize int32) *storageHandler {
	return &storageHandler{
		store:       store,
		logger:      logger.With("handler", "storage"),
		maxListSize: maxListSize,
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Path: "", Handler: h.list},
			{Method: "GET", Path: "/download/{key...}", Handler: h.download},
			{Method: "GET", Path: "/{key...}", Handler: h.find},
		},
	}
}

// listPrefix resolves the listing prefix. A subject query narrows the
// listing to that subject's published logs.
func listPrefix(q map[string][]string) (string, error) {
	prefix, subject := first(q["prefix"]), first(q["subject"])
	switch {
	case subject == "":
		return prefix, nil
	case prefix != "":
		return "", errPrefixConflict
	default:
		return path.Join(subject, "logs") + "/", nil
	}
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (h *storageHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	prefix, err := listPrefix(q)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	maxResults, err := storage.ParseMaxResults(q.Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(r.Context(), prefix, q.Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *storageHandler) find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Find(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	blob, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("download interrupted", "key", key, "error", err)
	}
}
