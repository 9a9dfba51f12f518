package datapoints

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/actigraphy/pkg/query"
	"github.com/JaimeStill/actigraphy/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a data point repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "datapoints"),
	}
}

func (r *repo) QueryWindow(ctx context.Context, subjectID int64, date time.Time) ([]DataPoint, error) {
	lo, hi := Window(date)
	return r.between(ctx, subjectID, lo, hi)
}

func (r *repo) FindNearest(ctx context.Context, subjectID int64, target time.Time, windowMinutes int) (*DataPoint, error) {
	if windowMinutes <= 0 {
		windowMinutes = DefaultNearestWindow
	}

	naive := time.Date(
		target.Year(), target.Month(), target.Day(),
		target.Hour(), target.Minute(), target.Second(), target.Nanosecond(),
		time.UTC,
	)
	half := time.Duration(windowMinutes) * time.Minute / 2

	candidates, err := r.between(ctx, subjectID, naive.Add(-half), naive.Add(half))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no sample within %d minutes of %s", ErrNotFound, windowMinutes, naive.Format(time.DateTime))
	}

	best := 0
	bestDist := absDuration(candidates[0].Timestamp.Sub(naive))
	for i := 1; i < len(candidates); i++ {
		if d := absDuration(candidates[i].Timestamp.Sub(naive)); d < bestDist {
			best, bestDist = i, d
		}
	}

	return &candidates[best], nil
}

func (r *repo) between(ctx context.Context, subjectID int64, lo, hi time.Time) ([]DataPoint, error) {
	q, args := query.
		NewBuilder(projection, chronological...).
		WhereEquals("SubjectID", subjectID).
		WhereBetween("Timestamp", lo, hi).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanDataPoint)
	if err != nil {
		return nil, fmt.Errorf("query data points: %w", err)
	}
	return items, nil
}

// Insert bulk-inserts samples for a subject inside an open transaction.
func Insert(ctx context.Context, e repository.Executor, subjectID int64, points []DataPoint) (int64, error) {
	return repository.InsertBatch(ctx, e, "data_points", insertColumns, points, func(p DataPoint) []any {
		return []any{
			subjectID,
			p.Timestamp.UTC(),
			p.TimestampUTCOffset,
			p.SensorAngle,
			p.SensorAcceleration,
			p.NonWear,
		}
	})
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
