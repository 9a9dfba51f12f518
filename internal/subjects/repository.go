package subjects

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/JaimeStill/actigraphy/internal/datapoints"
	"github.com/JaimeStill/actigraphy/internal/days"
	"github.com/JaimeStill/actigraphy/internal/sleeptimes"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
	"github.com/JaimeStill/actigraphy/pkg/query"
	"github.com/JaimeStill/actigraphy/pkg/repository"
)

// MaxNameLength bounds subject names.
const MaxNameLength = 128

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a subject repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "subjects"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Subject], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name")

	filters.Apply(qb)

	if sort := page.Sort.Known(projection); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count subjects: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSubject)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, name string) (*Subject, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Name", name)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSubject)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM subjects WHERE name = $1)",
		name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subject: %w", err)
	}
	return exists, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Subject, error) {
	if err := validateName(cmd.Name); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO subjects(name, n_points_per_day)
		VALUES ($1, $2)
		RETURNING id, name, n_points_per_day, is_finished, time_created, time_updated`

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Subject, error) {
		s, err := repository.QueryOne(ctx, tx, q, []any{cmd.Name, cmd.NPointsPerDay}, scanSubject)
		if err != nil {
			return s, err
		}

		var manual, reference []sleeptimes.Row
		for _, d := range cmd.Days {
			dayID, err := days.Insert(ctx, tx, s.ID, d.Date)
			if err != nil {
				return s, fmt.Errorf("insert day %s: %w", d.Date.Format("2006-01-02"), err)
			}
			for _, c := range d.SleepTimes {
				manual = append(manual, sleeptimes.Row{DayID: dayID, Command: c})
			}
			for _, c := range d.References {
				reference = append(reference, sleeptimes.Row{DayID: dayID, Command: c})
			}
		}

		if _, err := sleeptimes.Insert(ctx, tx, sleeptimes.Manual, manual); err != nil {
			return s, err
		}
		if _, err := sleeptimes.Insert(ctx, tx, sleeptimes.Reference, reference); err != nil {
			return s, err
		}
		if _, err := datapoints.Insert(ctx, tx, s.ID, cmd.DataPoints); err != nil {
			return s, err
		}

		return s, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"subject created",
		"name", s.Name,
		"days", len(cmd.Days),
		"data_points", len(cmd.DataPoints),
	)
	return &s, nil
}

func (r *repo) SetFinished(ctx context.Context, name string, finished bool) (*Subject, error) {
	q := `
		UPDATE subjects SET is_finished = $2
		WHERE name = $1
		RETURNING id, name, n_points_per_day, is_finished, time_created, time_updated`

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Subject, error) {
		return repository.QueryOne(ctx, tx, q, []any{name, finished}, scanSubject)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("subject finished flag updated", "name", name, "finished", finished)
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, name string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM subjects WHERE name = $1",
			name,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("subject deleted", "name", name)
	return nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameLength {
		return fmt.Errorf("%w: got %d", ErrInvalidName, n)
	}
	return nil
}
