package ingest

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/JaimeStill/actigraphy/internal/subjects"
)

var (
	ErrNoMetadata     = errors.New("metadata file not found")
	ErrNoNightSummary = errors.New("night summary file not found")
	ErrMissingColumn  = errors.New("missing column")
	ErrLengthMismatch = errors.New("column length mismatch")
	ErrNoSamples      = errors.New("metadata has no samples")
	ErrInvalidRequest = errors.New("invalid import request")
	ErrFileTooLarge   = errors.New("upload exceeds maximum size")
)

// ParseError reports malformed input content. Field names the offending
// value, for example metashort.timestamp[12].
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return "parse " + e.Field + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus maps import errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var perr *ParseError
	switch {
	case errors.As(err, &perr),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, subjects.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, subjects.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
