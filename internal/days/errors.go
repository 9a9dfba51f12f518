package days

import (
	"errors"
	"net/http"
)

// Domain errors for day operations.
var (
	ErrNotFound  = errors.New("day not found")
	ErrDuplicate = errors.New("day already exists for subject")
)

// MapHTTPStatus maps day domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
