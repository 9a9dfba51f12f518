package subjects

import (
	"errors"
	"net/http"
)

// Domain errors for subject operations.
var (
	ErrNotFound    = errors.New("subject not found")
	ErrDuplicate   = errors.New("subject already exists")
	ErrInvalidName = errors.New("subject name must be 1 to 128 characters")
)

// MapHTTPStatus maps subject domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidName) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
