// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/example/elemcat/internal/core/errkind"
)

// isUniqueViolation reports whether err is a UNIQUE constraint failure on a
// business key. Surrogate id collisions are PRIMARY KEY failures and are not
// reported here.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint failure.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// translateWriteError maps constraint failures onto the error taxonomy.
func translateWriteError(err error, entity, key string) error {
	switch {
	case isUniqueViolation(err):
		return errkind.Duplicate(entity, key)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s %s references a missing row", errkind.ErrNotFound, entity, key)
	default:
		return fmt.Errorf("failed to write %s: %w", entity, err)
	}
}

// formatTime renders a scanned timestamp for records.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// formatNullTime renders a nullable timestamp, empty when null.
func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return formatTime(t.Time)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// nextID returns the next sequential "PREFIX-NNN" id of a table.
func nextID(ctx context.Context, q queryer, table, prefix string) (string, error) {
	var maxID int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s", len(prefix)+2, table),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%03d", prefix, maxID+1), nil
}

// exists runs a COUNT query and reports whether it is positive.
func exists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
