package sleeptimes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/actigraphy/pkg/query"
	"github.com/JaimeStill/actigraphy/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a sleep window repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "sleeptimes"),
	}
}

var returning = " RETURNING " + strings.Join(columns, ", ")

var bySubjectProjection = projectionFor(Manual).
	Join("public", "days", "d", "JOIN", "d.id = st.day_id")

func (r *repo) ListByDay(ctx context.Context, dayID int64) ([]SleepTime, error) {
	return r.listByDay(ctx, manualProjection, dayID)
}

func (r *repo) ListReferenceByDay(ctx context.Context, dayID int64) ([]SleepTime, error) {
	return r.listByDay(ctx, referenceProjection, dayID)
}

func (r *repo) listByDay(ctx context.Context, p *query.ProjectionMap, dayID int64) ([]SleepTime, error) {
	q, args := query.
		NewBuilder(p, byCreation).
		WhereEquals("DayID", dayID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanSleepTime)
	if err != nil {
		return nil, fmt.Errorf("query sleep times: %w", err)
	}
	return items, nil
}

func (r *repo) ListBySubject(ctx context.Context, subjectID int64) ([]DaySleepTimes, error) {
	dayRows, err := repository.QueryMany(
		ctx, r.db,
		"SELECT id, date, is_missing_sleep FROM days WHERE subject_id = $1 ORDER BY date",
		[]any{subjectID},
		scanDayHeader,
	)
	if err != nil {
		return nil, fmt.Errorf("query subject days: %w", err)
	}

	q, args := query.
		NewBuilder(bySubjectProjection, query.SortField{Field: "d.date"}, byCreation).
		WhereEquals("d.subject_id", subjectID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanSleepTime)
	if err != nil {
		return nil, fmt.Errorf("query subject sleep times: %w", err)
	}

	byDay := make(map[int64][]SleepTime, len(dayRows))
	for _, st := range items {
		byDay[st.DayID] = append(byDay[st.DayID], st)
	}

	for i := range dayRows {
		if found, ok := byDay[dayRows[i].DayID]; ok {
			dayRows[i].SleepTimes = found
		}
	}
	return dayRows, nil
}

func (r *repo) Create(ctx context.Context, dayID int64, cmd Command) (*SleepTime, error) {
	q := "INSERT INTO sleep_times(day_id, onset, onset_utc_offset, wakeup, wakeup_utc_offset) VALUES ($1, $2, $3, $4, $5)" + returning

	st, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (SleepTime, error) {
		return repository.QueryOne(ctx, tx, q, insertRow(Row{DayID: dayID, Command: cmd}), scanSleepTime)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("sleep time created", "id", st.ID, "day_id", dayID)
	return &st, nil
}

func (r *repo) Update(ctx context.Context, id int64, cmd Command) (*SleepTime, error) {
	q := `
		UPDATE sleep_times SET
			onset = $2,
			onset_utc_offset = $3,
			wakeup = $4,
			wakeup_utc_offset = $5
		WHERE id = $1` + returning

	args := []any{id, cmd.Onset.UTC(), cmd.OnsetUTCOffset, cmd.Wakeup.UTC(), cmd.WakeupUTCOffset}

	st, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (SleepTime, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSleepTime)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("sleep time updated", "id", st.ID, "day_id", st.DayID)
	return &st, nil
}

func (r *repo) DeleteLast(ctx context.Context, dayID int64) (*SleepTime, error) {
	q := `
		DELETE FROM sleep_times
		WHERE id = (SELECT id FROM sleep_times WHERE day_id = $1 ORDER BY id DESC LIMIT 1)` + returning

	st, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (SleepTime, error) {
		return repository.QueryOne(ctx, tx, q, []any{dayID}, scanSleepTime)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("sleep time deleted", "id", st.ID, "day_id", dayID)
	return &st, nil
}

// Insert bulk-inserts rows into table inside an open transaction.
func Insert(ctx context.Context, e repository.Executor, table Table, rows []Row) (int64, error) {
	return repository.InsertBatch(ctx, e, string(table), insertColumns, rows, insertRow)
}

func scanDayHeader(s repository.Scanner) (DaySleepTimes, error) {
	var d DaySleepTimes
	if err := s.Scan(&d.DayID, &d.Date, &d.IsMissingSleep); err != nil {
		return d, err
	}
	d.SleepTimes = []SleepTime{}
	return d, nil
}
