package datapoints

import (
	"errors"
	"net/http"
)

// Domain errors for data point operations.
var (
	ErrNotFound  = errors.New("data point not found")
	ErrDuplicate = errors.New("data point already exists")
	// ErrTooManyOffsets reports more than two UTC offsets in one review window.
	ErrTooManyOffsets = errors.New("more than two utc offsets in review window")
)

// MapHTTPStatus maps data point errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
