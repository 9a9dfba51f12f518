package datapoints

import (
	"context"
	"time"
)

// System defines the public contract for data point operations.
// Samples are written once at import and never modified.
type System interface {
	// QueryWindow returns the samples of the review window anchored on date,
	// ordered by timestamp then offset.
	QueryWindow(ctx context.Context, subjectID int64, date time.Time) ([]DataPoint, error)
	// FindNearest returns the sample closest to the wall-clock reading of
	// target, searching windowMinutes centred on it.
	FindNearest(ctx context.Context, subjectID int64, target time.Time, windowMinutes int) (*DataPoint, error)
}
