package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/formatting"
	"github.com/JaimeStill/actigraphy/pkg/handlers"
	"github.com/JaimeStill/actigraphy/pkg/routes"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

// StagingPrefix is the storage prefix under which uploads are staged while
// their import runs. Staged parts are removed once the import returns.
const StagingPrefix = "imports"

// ImportResult is the response of a successful upload.
type ImportResult struct {
	RunID   uuid.UUID         `json:"run_id"`
	Subject *subjects.Subject `json:"subject"`
}

// Handler accepts subject uploads over HTTP.
type Handler struct {
	pipeline      *Pipeline
	storage       storage.System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler staging uploads in store.
func NewHandler(pipeline *Pipeline, store storage.System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		pipeline:      pipeline,
		storage:       store,
		logger:        logger.With("handler", "imports"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for import endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/imports",
		Routes: []routes.Route{
			{Method: "POST", Path: "", Handler: h.Upload},
		},
	}
}

// Upload imports one subject from a multipart form with an identifier, a
// metadata bundle and a night summary (CSV or XLSX).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: limit %s", ErrFileTooLarge, formatting.ByteSize(tooLarge.Limit))
		} else {
			err = fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	identifier := strings.TrimSpace(r.FormValue("identifier"))
	if identifier == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: identifier is required", ErrInvalidRequest))
		return
	}

	exists, err := h.pipeline.Exists(r.Context(), identifier)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	if exists {
		handlers.RespondError(w, h.logger, http.StatusConflict, subjects.ErrDuplicate)
		return
	}

	runID := uuid.New()
	prefix := path.Join(StagingPrefix, runID.String())

	var staged []string
	defer func() { h.unstage(r.Context(), runID, staged) }()

	metaKey := path.Join(prefix, "meta_"+identifier+".json")
	staged = append(staged, metaKey)
	metaSize, err := h.stage(r, "metadata", metaKey, "application/json")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	nightsKey, contentType := path.Join(prefix, identifier+".csv"), "text/csv"
	if header, ok := r.MultipartForm.File["nightsummary"]; ok && len(header) > 0 && isSpreadsheet(header[0].Filename) {
		nightsKey = path.Join(prefix, identifier+".xlsx")
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	staged = append(staged, nightsKey)
	nightsSize, err := h.stage(r, "nightsummary", nightsKey, contentType)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.logger.Info(
		"upload staged",
		"run_id", runID,
		"identifier", identifier,
		"size", formatting.ByteSize(metaSize+nightsSize).String(),
	)

	s, err := h.pipeline.Initialize(
		r.Context(),
		identifier,
		StoredMetadata{Storage: h.storage, Key: metaKey},
		StoredNightSummary{Storage: h.storage, Key: nightsKey},
	)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, ImportResult{RunID: runID, Subject: s})
}

// unstage removes the staged parts of a finished upload. The import has
// already succeeded or failed, so a cleanup error is only logged.
func (h *Handler) unstage(ctx context.Context, runID uuid.UUID, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		err := h.storage.Delete(ctx, key)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			h.logger.Warn("staged upload not removed", "run_id", runID, "key", key, "error", err)
		}
	}
}

func (h *Handler) stage(r *http.Request, field, key, contentType string) (int64, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return 0, fmt.Errorf("%w: %s file is required", ErrInvalidRequest, field)
	}
	defer file.Close()

	if err := h.storage.Upload(r.Context(), key, file, contentType); err != nil {
		return 0, fmt.Errorf("stage %s: %w", field, err)
	}
	return header.Size, nil
}
