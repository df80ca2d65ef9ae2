package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/ports/secondary"
)

// ProjectElementRepository implements secondary.ProjectElementRepository with SQLite.
type ProjectElementRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewProjectElementRepository creates a new SQLite project element repository.
// logWriter is optional - if nil, no change logging is performed.
func NewProjectElementRepository(db *sql.DB, logWriter secondary.LogWriter) *ProjectElementRepository {
	return &ProjectElementRepository{db: db, logWriter: logWriter}
}

const projectElementColumns = "id, project_id, element_id, description_version_id, instance_code, instance_name, location, created_by, created_at, updated_at"

// Create persists a new instance and its stale rendered description row.
// The ID is assigned inside the transaction when empty.
func (r *ProjectElementRepository) Create(ctx context.Context, pe *secondary.ProjectElementRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if pe.ID == "" {
		id, err := nextID(ctx, tx, "project_elements", "PE")
		if err != nil {
			return err
		}
		pe.ID = id
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO project_elements (id, project_id, element_id, description_version_id, instance_code, instance_name, location, created_by) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		pe.ID, pe.ProjectID, pe.ElementID, pe.VersionID, pe.InstanceCode, pe.InstanceName, nullString(pe.Location), pe.CreatedBy,
	)
	if err != nil {
		return translateWriteError(err, "instance code", pe.InstanceCode)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO rendered_descriptions (project_element_id, is_stale, input_revision) VALUES (?, 1, 0)",
		pe.ID,
	); err != nil {
		return fmt.Errorf("failed to create rendered description: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project element: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctxutil.WithActor(ctx, pe.CreatedBy), "project_element", pe.ID)
	}
	return nil
}

// GetByID retrieves an instance by its ID.
func (r *ProjectElementRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectElementRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+projectElementColumns+" FROM project_elements WHERE id = ?", id)
	record, err := scanProjectElement(row)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("project element", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project element: %w", err)
	}
	return record, nil
}

// ListByProject retrieves the instances of a project ordered by instance code.
func (r *ProjectElementRepository) ListByProject(ctx context.Context, projectID string) ([]*secondary.ProjectElementRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+projectElementColumns+" FROM project_elements WHERE project_id = ? ORDER BY instance_code ASC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list project elements: %w", err)
	}
	defer rows.Close()

	var elements []*secondary.ProjectElementRecord
	for rows.Next() {
		record, err := scanProjectElement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project element: %w", err)
		}
		elements = append(elements, record)
	}
	return elements, rows.Err()
}

// InstanceCodeExists checks if an instance code is taken within a project.
func (r *ProjectElementRepository) InstanceCodeExists(ctx context.Context, projectID, instanceCode string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT COUNT(*) FROM project_elements WHERE project_id = ? AND instance_code = ?", projectID, instanceCode)
	if err != nil {
		return false, fmt.Errorf("failed to check instance code: %w", err)
	}
	return found, nil
}

const valueColumns = "project_element_id, variable_id, value, revision, updated_by, updated_at"

// GetValue retrieves one value, or nil if none is stored.
func (r *ProjectElementRepository) GetValue(ctx context.Context, projectElementID, variableID string) (*secondary.ValueRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+valueColumns+" FROM project_element_values WHERE project_element_id = ? AND variable_id = ?",
		projectElementID, variableID,
	)
	record, err := scanValue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}
	return record, nil
}

// ListValues retrieves all values of an instance.
func (r *ProjectElementRepository) ListValues(ctx context.Context, projectElementID string) ([]*secondary.ValueRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+valueColumns+" FROM project_element_values WHERE project_element_id = ? ORDER BY variable_id ASC",
		projectElementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list values: %w", err)
	}
	defer rows.Close()

	var values []*secondary.ValueRecord
	for rows.Next() {
		record, err := scanValue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, record)
	}
	return values, rows.Err()
}

// UpsertValue stores a value and marks the rendered description stale in one
// transaction. A positive expectedRevision makes the write conditional.
func (r *ProjectElementRepository) UpsertValue(ctx context.Context, value *secondary.ValueRecord, expectedRevision int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var old sql.NullString
	if err := tx.QueryRowContext(ctx,
		"SELECT value FROM project_element_values WHERE project_element_id = ? AND variable_id = ?",
		value.ProjectElementID, value.VariableID,
	).Scan(&old); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read value: %w", err)
	}

	if expectedRevision > 0 {
		result, err := tx.ExecContext(ctx,
			"UPDATE project_element_values SET value = ?, revision = revision + 1, updated_by = ?, updated_at = CURRENT_TIMESTAMP WHERE project_element_id = ? AND variable_id = ? AND revision = ?",
			value.Value, value.UpdatedBy, value.ProjectElementID, value.VariableID, expectedRevision,
		)
		if err != nil {
			return fmt.Errorf("failed to update value: %w", err)
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return fmt.Errorf("%w: value of %s on %s is not at revision %d",
				errkind.ErrConflict, value.VariableID, value.ProjectElementID, expectedRevision)
		}
	} else {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO project_element_values (project_element_id, variable_id, value, revision, updated_by)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT(project_element_id, variable_id) DO UPDATE SET
				value = excluded.value,
				revision = project_element_values.revision + 1,
				updated_by = excluded.updated_by,
				updated_at = CURRENT_TIMESTAMP`,
			value.ProjectElementID, value.VariableID, value.Value, value.UpdatedBy,
		)
		if err != nil {
			return translateWriteError(err, "value", value.VariableID)
		}
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT revision FROM project_element_values WHERE project_element_id = ? AND variable_id = ?",
		value.ProjectElementID, value.VariableID,
	).Scan(&value.Revision); err != nil {
		return fmt.Errorf("failed to read value revision: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rendered_descriptions (project_element_id, is_stale, input_revision)
		VALUES (?, 1, 1)
		ON CONFLICT(project_element_id) DO UPDATE SET
			is_stale = 1,
			input_revision = rendered_descriptions.input_revision + 1`,
		value.ProjectElementID,
	); err != nil {
		return fmt.Errorf("failed to mark rendered description stale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit value: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctxutil.WithActor(ctx, value.UpdatedBy), "project_element", value.ProjectElementID, value.VariableID, old.String, value.Value)
	}
	return nil
}

func scanProjectElement(s rowScanner) (*secondary.ProjectElementRecord, error) {
	var (
		location  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.ProjectElementRecord{}
	if err := s.Scan(&record.ID, &record.ProjectID, &record.ElementID, &record.VersionID, &record.InstanceCode, &record.InstanceName, &location, &record.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record.Location = location.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

func scanValue(s rowScanner) (*secondary.ValueRecord, error) {
	var updatedAt time.Time

	record := &secondary.ValueRecord{}
	if err := s.Scan(&record.ProjectElementID, &record.VariableID, &record.Value, &record.Revision, &record.UpdatedBy, &updatedAt); err != nil {
		return nil, err
	}

	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

// Ensure ProjectElementRepository implements the interface.
var _ secondary.ProjectElementRepository = (*ProjectElementRepository)(nil)
