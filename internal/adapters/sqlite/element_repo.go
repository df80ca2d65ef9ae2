package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/ports/secondary"
)

// ElementRepository implements secondary.ElementRepository with SQLite.
type ElementRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewElementRepository creates a new SQLite element repository.
// logWriter is optional - if nil, no change logging is performed.
func NewElementRepository(db *sql.DB, logWriter secondary.LogWriter) *ElementRepository {
	return &ElementRepository{db: db, logWriter: logWriter}
}

const elementColumns = "id, code, name, category, price, created_by, created_at, updated_by, updated_at"

// Create persists a new element. The ID is assigned inside the insert
// transaction when empty.
func (r *ElementRepository) Create(ctx context.Context, element *secondary.ElementRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if element.ID == "" {
		id, err := nextID(ctx, tx, "elements", "ELEM")
		if err != nil {
			return err
		}
		element.ID = id
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO elements (id, code, name, category, price, created_by, updated_by) VALUES (?, ?, ?, ?, ?, ?, ?)",
		element.ID, element.Code, element.Name, nullString(element.Category), nullFloat(element.Price), element.CreatedBy, element.CreatedBy,
	)
	if err != nil {
		return translateWriteError(err, "element code", element.Code)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit element: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctxutil.WithActor(ctx, element.CreatedBy), "element", element.ID)
	}
	return nil
}

// GetByID retrieves an element by its ID.
func (r *ElementRepository) GetByID(ctx context.Context, id string) (*secondary.ElementRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+elementColumns+" FROM elements WHERE id = ?", id)
	record, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("element", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get element: %w", err)
	}
	return record, nil
}

// GetByCode retrieves an element by its business code.
func (r *ElementRepository) GetByCode(ctx context.Context, code string) (*secondary.ElementRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+elementColumns+" FROM elements WHERE code = ?", code)
	record, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("element", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get element: %w", err)
	}
	return record, nil
}

// List retrieves elements matching the given filters, ordered by code.
func (r *ElementRepository) List(ctx context.Context, filters secondary.ElementFilters) ([]*secondary.ElementRecord, error) {
	query := "SELECT " + elementColumns + " FROM elements"
	var args []any
	if filters.Category != "" {
		query += " WHERE category = ?"
		args = append(args, filters.Category)
	}
	query += " ORDER BY code ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list elements: %w", err)
	}
	defer rows.Close()

	var elements []*secondary.ElementRecord
	for rows.Next() {
		record, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		elements = append(elements, record)
	}
	return elements, rows.Err()
}

// CodeExists checks if an element code is taken.
func (r *ElementRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT COUNT(*) FROM elements WHERE code = ?", code)
	if err != nil {
		return false, fmt.Errorf("failed to check element code: %w", err)
	}
	return found, nil
}

// UpdatePrice sets or clears the element price.
func (r *ElementRepository) UpdatePrice(ctx context.Context, id string, price *float64, updatedBy string) error {
	var old sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, "SELECT price FROM elements WHERE id = ?", id).Scan(&old); err == sql.ErrNoRows {
		return errkind.NotFound("element", id)
	} else if err != nil {
		return fmt.Errorf("failed to read element price: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE elements SET price = ?, updated_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		nullFloat(price), updatedBy, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update element price: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errkind.NotFound("element", id)
	}

	if r.logWriter != nil {
		var oldPrice *float64
		if old.Valid {
			oldPrice = &old.Float64
		}
		_ = r.logWriter.LogUpdate(ctxutil.WithActor(ctx, updatedBy), "element", id, "price", priceText(oldPrice), priceText(price))
	}
	return nil
}

func priceText(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElement(s rowScanner) (*secondary.ElementRecord, error) {
	var (
		category  sql.NullString
		price     sql.NullFloat64
		updatedBy sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.ElementRecord{}
	if err := s.Scan(&record.ID, &record.Code, &record.Name, &category, &price, &record.CreatedBy, &createdAt, &updatedBy, &updatedAt); err != nil {
		return nil, err
	}

	record.Category = category.String
	if price.Valid {
		p := price.Float64
		record.Price = &p
	}
	record.UpdatedBy = updatedBy.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

// Ensure ElementRepository implements the interface.
var _ secondary.ElementRepository = (*ElementRepository)(nil)
