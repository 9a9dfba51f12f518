package days

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/actigraphy/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a day repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "days"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, subjectName string, index int) (*Day, error) {
	d, err := find(ctx, r.db, subjectName, index)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) List(ctx context.Context, subjectName string) ([]Day, error) {
	q, args := bySubject(subjectName).Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanDay)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, subjectName string) (int, error) {
	q, args := bySubject(subjectName).BuildCount()

	var total int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count days: %w", err)
	}
	return total, nil
}

func (r *repo) SetFlags(ctx context.Context, subjectName string, index int, cmd FlagsCommand) (*Day, error) {
	q := `
		UPDATE days SET
			is_multiple_sleep = COALESCE($2, is_multiple_sleep),
			is_missing_sleep = COALESCE($3, is_missing_sleep),
			is_reviewed = COALESCE($4, is_reviewed)
		WHERE id = $1
		RETURNING id, subject_id, date, is_multiple_sleep, is_missing_sleep, is_reviewed, time_created, time_updated`

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Day, error) {
		current, err := find(ctx, tx, subjectName, index)
		if err != nil {
			return Day{}, err
		}

		args := []any{current.ID, cmd.IsMultipleSleep, cmd.IsMissingSleep, cmd.IsReviewed}
		return repository.QueryOne(ctx, tx, q, args, scanDay)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("day flags updated", "subject", subjectName, "index", index, "id", d.ID)
	return &d, nil
}

// Insert adds a day for a subject inside an open transaction and returns its id.
func Insert(ctx context.Context, q repository.Querier, subjectID int64, date time.Time) (int64, error) {
	y, m, dd := date.Date()

	var id int64
	err := q.QueryRowContext(
		ctx,
		"INSERT INTO days(subject_id, date) VALUES ($1, $2) RETURNING id",
		subjectID, time.Date(y, m, dd, 0, 0, 0, 0, time.UTC),
	).Scan(&id)
	if err != nil {
		return 0, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return id, nil
}

func find(ctx context.Context, q repository.Querier, subjectName string, index int) (Day, error) {
	if index < 0 {
		return Day{}, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}

	sqlStr, args := bySubject(subjectName).BuildNth(index)

	d, err := repository.QueryOne(ctx, q, sqlStr, args, scanDay)
	if err != nil {
		return Day{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return d, nil
}
