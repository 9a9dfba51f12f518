package sleeptimes

import (
	"errors"
	"net/http"
)

// Domain errors for sleep window operations.
var (
	ErrNotFound  = errors.New("sleep time not found")
	ErrDuplicate = errors.New("sleep time already exists")
)

// MapHTTPStatus maps sleep window errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
