// Package repository provides database helper functions for transaction management
// and query execution.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// MaxParams is the PostgreSQL limit on bind parameters in one statement.
const MaxParams = 65535

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner abstracts row scanning for use with query helpers.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts a Scanner into a typed value.
// Domain packages define their own scan functions for entity types.
type ScanFunc[T any] func(Scanner) (T, error)

// RowFunc flattens one value into its insert arguments, in column order.
type RowFunc[T any] func(T) []any

// WithTx runs fn inside a transaction, committing when fn succeeds and
// rolling back otherwise. A failed rollback is joined onto fn's error.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (result T, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if result, err = fn(tx); err != nil {
		var zero T
		return zero, err
	}

	if err = tx.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

// QueryOne scans the single row query returns. No row surfaces as
// sql.ErrNoRows from scan.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row query returns. An empty result is a non-nil
// empty slice.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

// ExecExpectOne runs a statement that must touch at least one row,
// returning sql.ErrNoRows when it touches none.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	switch n, err := result.RowsAffected(); {
	case err != nil:
		return err
	case n == 0:
		return sql.ErrNoRows
	}
	return nil
}

// InsertBatch inserts items into table as multi-row VALUES statements,
// splitting them so no statement exceeds MaxParams bind parameters.
// It returns the number of rows inserted.
func InsertBatch[T any](
	ctx context.Context,
	e Executor,
	table string,
	columns []string,
	items []T,
	row RowFunc[T],
) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("insert %s: no columns", table)
	}

	chunk := MaxParams / len(columns)
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	var total int64
	for start := 0; start < len(items); start += chunk {
		end := min(start+chunk, len(items))
		query, args := buildValues(prefix, len(columns), items[start:end], row)

		result, err := e.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("insert %s rows %d-%d: %w", table, start, end-1, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

func buildValues[T any](prefix string, width int, items []T, row RowFunc[T]) (string, []any) {
	var sb strings.Builder
	sb.WriteString(prefix)

	args := make([]any, 0, len(items)*width)
	param := 1

	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range width {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", param)
			param++
		}
		sb.WriteByte(')')
		args = append(args, row(item)...)
	}

	return sb.String(), args
}
