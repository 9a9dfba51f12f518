package review

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/internal/solver"
	"github.com/JaimeStill/actigraphy/internal/subjects"
	"github.com/JaimeStill/actigraphy/pkg/handlers"
)

var (
	// ErrOverlap indicates a resolved window still intersects another window of the day.
	ErrOverlap = errors.New("sleep windows overlap")
	// ErrNoData indicates a day without samples in its review window.
	ErrNoData = errors.New("no data points in review window")
	// ErrInvalidPoints indicates slider points off the axis or out of order.
	ErrInvalidPoints = errors.New("invalid slider points")
)

// MapHTTPStatus maps review and domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, handlers.ErrInvalidRequest),
		errors.Is(err, ErrInvalidPoints):
		return http.StatusBadRequest
	case errors.Is(err, subjects.ErrNotFound),
		errors.Is(err, days.ErrNotFound),
		errors.Is(err, sleeptimes.ErrNotFound),
		errors.Is(err, datapoints.ErrNotFound),
		errors.Is(err, ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, ErrOverlap),
		errors.Is(err, solver.ErrNoConvergence):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
