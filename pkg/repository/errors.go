package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes translated by MapError.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapError translates database errors to domain errors.
//
// sql.ErrNoRows and foreign key violations map to notFoundErr: a row written
// against a parent that was deleted concurrently reports the parent as
// missing. Unique violations map to duplicateErr. Other errors are returned
// unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return duplicateErr
	case pgForeignKeyViolation:
		return notFoundErr
	default:
		return err
	}
}
