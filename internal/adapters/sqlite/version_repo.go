package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ports/secondary"
)

// VersionRepository implements secondary.VersionRepository with SQLite.
type VersionRepository struct {
	db *sql.DB
}

// NewVersionRepository creates a new SQLite version repository.
func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

const versionColumns = "id, element_id, version_number, template_text, state, is_active, created_by, created_at, updated_at"

// Create persists a new version. The version number, and the ID when empty,
// are assigned inside the insert transaction.
func (r *VersionRepository) Create(ctx context.Context, version *secondary.VersionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version.ID == "" {
		id, err := nextID(ctx, tx, "description_versions", "VER")
		if err != nil {
			return err
		}
		version.ID = id
	}

	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version_number), 0) + 1 FROM description_versions WHERE element_id = ?",
		version.ElementID,
	).Scan(&version.VersionNumber)
	if err != nil {
		return fmt.Errorf("failed to compute version number: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO description_versions (id, element_id, version_number, template_text, state, is_active, created_by) VALUES (?, ?, ?, ?, ?, 0, ?)",
		version.ID, version.ElementID, version.VersionNumber, version.TemplateText, version.State, version.CreatedBy,
	)
	if err != nil {
		return translateWriteError(err, "version", version.ID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit version: %w", err)
	}
	return nil
}

// GetByID retrieves a version by its ID.
func (r *VersionRepository) GetByID(ctx context.Context, id string) (*secondary.VersionRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+versionColumns+" FROM description_versions WHERE id = ?", id)
	record, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("version", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return record, nil
}

// ListByElement retrieves the versions of an element, newest first.
func (r *VersionRepository) ListByElement(ctx context.Context, elementID string) ([]*secondary.VersionRecord, error) {
	return r.list(ctx,
		"SELECT "+versionColumns+" FROM description_versions WHERE element_id = ? ORDER BY version_number DESC",
		elementID,
	)
}

// ListByStates retrieves versions in any of the given states, oldest first.
func (r *VersionRepository) ListByStates(ctx context.Context, states []string) ([]*secondary.VersionRecord, error) {
	if len(states) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(states)), ", ")
	args := make([]any, len(states))
	for i, s := range states {
		args[i] = s
	}

	return r.list(ctx,
		"SELECT "+versionColumns+" FROM description_versions WHERE state IN ("+placeholders+") ORDER BY created_at ASC, id ASC",
		args...,
	)
}

// GetActive retrieves the active version of an element.
func (r *VersionRepository) GetActive(ctx context.Context, elementID string) (*secondary.VersionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+versionColumns+" FROM description_versions WHERE element_id = ? AND is_active = 1",
		elementID,
	)
	record, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no active version for element %s", errkind.ErrNotFound, elementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active version: %w", err)
	}
	return record, nil
}

// ApplyTransition moves a version between states and appends the approval
// log entry in one transaction.
func (r *VersionRepository) ApplyTransition(ctx context.Context, t *secondary.TransitionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Demote first: the partial unique index allows one active row per element.
	if t.Activate {
		_, err := tx.ExecContext(ctx,
			"UPDATE description_versions SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE element_id = ? AND is_active = 1 AND id != ?",
			t.ElementID, t.VersionID,
		)
		if err != nil {
			return fmt.Errorf("failed to demote active version: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE description_versions SET state = ?, is_active = CASE WHEN ? THEN 1 ELSE is_active END, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND state = ?",
		t.ToState, t.Activate, t.VersionID, t.FromState,
	)
	if err != nil {
		return fmt.Errorf("failed to update version state: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		found, err := exists(ctx, tx, "SELECT COUNT(*) FROM description_versions WHERE id = ?", t.VersionID)
		if err != nil {
			return fmt.Errorf("failed to check version: %w", err)
		}
		if !found {
			return errkind.NotFound("version", t.VersionID)
		}
		return fmt.Errorf("%w: version %s is no longer in state %s", errkind.ErrConflict, t.VersionID, t.FromState)
	}

	if a := t.Approval; a != nil {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO version_approvals (id, version_id, from_state, to_state, actor, comment) VALUES (?, ?, ?, ?, ?, ?)",
			a.ID, t.VersionID, t.FromState, t.ToState, a.Actor, nullString(a.Comment),
		)
		if err != nil {
			return translateWriteError(err, "approval", a.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}
	return nil
}

// ListApprovals retrieves the approval log of a version, oldest first.
func (r *VersionRepository) ListApprovals(ctx context.Context, versionID string) ([]*secondary.ApprovalRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, version_id, from_state, to_state, actor, comment, created_at FROM version_approvals WHERE version_id = ? ORDER BY created_at ASC, rowid ASC",
		versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*secondary.ApprovalRecord
	for rows.Next() {
		var (
			comment   sql.NullString
			createdAt time.Time
		)
		a := &secondary.ApprovalRecord{}
		if err := rows.Scan(&a.ID, &a.VersionID, &a.FromState, &a.ToState, &a.Actor, &comment, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		a.Comment = comment.String
		a.CreatedAt = formatTime(createdAt)
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

// CreateMapping persists a placeholder binding.
func (r *VersionRepository) CreateMapping(ctx context.Context, mapping *secondary.MappingRecord) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO template_variable_mappings (version_id, variable_id, placeholder, position) VALUES (?, ?, ?, ?)",
		mapping.VersionID, mapping.VariableID, mapping.Placeholder, mapping.Position,
	)
	if err != nil {
		return translateWriteError(err, "mapping", "{"+mapping.Placeholder+"}")
	}

	id, err := result.LastInsertId()
	if err == nil {
		mapping.ID = strconv.FormatInt(id, 10)
	}
	return nil
}

// ListMappings retrieves the bindings of a version ordered by position.
func (r *VersionRepository) ListMappings(ctx context.Context, versionID string) ([]*secondary.MappingRecord, error) {
	return listMappings(ctx, r.db, versionID)
}

// rowsQueryer is satisfied by *sql.DB and *sql.Tx.
type rowsQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listMappings(ctx context.Context, q rowsQueryer, versionID string) ([]*secondary.MappingRecord, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, version_id, variable_id, placeholder, position, created_at FROM template_variable_mappings WHERE version_id = ? ORDER BY position ASC",
		versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*secondary.MappingRecord
	for rows.Next() {
		var (
			id        int64
			createdAt time.Time
		)
		m := &secondary.MappingRecord{}
		if err := rows.Scan(&id, &m.VersionID, &m.VariableID, &m.Placeholder, &m.Position, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		m.ID = strconv.FormatInt(id, 10)
		m.CreatedAt = formatTime(createdAt)
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *VersionRepository) list(ctx context.Context, query string, args ...any) ([]*secondary.VersionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*secondary.VersionRecord
	for rows.Next() {
		record, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, record)
	}
	return versions, rows.Err()
}

func scanVersion(s rowScanner) (*secondary.VersionRecord, error) {
	var (
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.VersionRecord{}
	if err := s.Scan(&record.ID, &record.ElementID, &record.VersionNumber, &record.TemplateText, &record.State, &record.IsActive, &record.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

// Ensure VersionRepository implements the interface.
var _ secondary.VersionRepository = (*VersionRepository)(nil)
