package store

import (
	"context"

	perr "jarbas/internal/platform/errors"
)

// Exec runs a write and returns the number of rows it touched
func Exec(ctx context.Context, q RowQuerier, sql string, args ...any) (int64, error) {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// One maps exactly one row into T with a custom scanner.
// No rows is perr.ErrNotFound, more than one is perr.ErrAmbiguous.
// Callers that only care about the ambiguity should LIMIT 2.
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, perr.ErrNotFound
	}
	item, err := scan(rows)
	if err != nil {
		return zero, err
	}
	if rows.Next() {
		return zero, perr.ErrAmbiguous
	}
	return item, rows.Err()
}
