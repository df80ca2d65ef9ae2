package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ports/secondary"
)

// RenderedRepository implements secondary.RenderedRepository with SQLite.
type RenderedRepository struct {
	db *sql.DB
}

// NewRenderedRepository creates a new SQLite rendered description repository.
func NewRenderedRepository(db *sql.DB) *RenderedRepository {
	return &RenderedRepository{db: db}
}

// LoadInputs reads the pinned template, its mappings, the instance values and
// the current input revision inside one read transaction.
func (r *RenderedRepository) LoadInputs(ctx context.Context, projectElementID string) (*secondary.RenderInputsRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	in := &secondary.RenderInputsRecord{
		ProjectElementID: projectElementID,
		Values:           make(map[string]string),
	}

	err = tx.QueryRowContext(ctx,
		`SELECT pe.description_version_id, dv.template_text, COALESCE(rd.input_revision, 0)
		FROM project_elements pe
		JOIN description_versions dv ON dv.id = pe.description_version_id
		LEFT JOIN rendered_descriptions rd ON rd.project_element_id = pe.id
		WHERE pe.id = ?`,
		projectElementID,
	).Scan(&in.VersionID, &in.TemplateText, &in.InputRevision)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("project element", projectElementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load render inputs: %w", err)
	}

	in.Mappings, err = listMappings(ctx, tx, in.VersionID)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT variable_id, value FROM project_element_values WHERE project_element_id = ?",
		projectElementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var variableID, value string
		if err := rows.Scan(&variableID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		in.Values[variableID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit render inputs: %w", err)
	}
	return in, nil
}

// Get retrieves the cached rendered description of an instance.
func (r *RenderedRepository) Get(ctx context.Context, projectElementID string) (*secondary.RenderedRecord, error) {
	var renderedAt sql.NullTime

	record := &secondary.RenderedRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT project_element_id, rendered_text, is_stale, input_revision, rendered_at FROM rendered_descriptions WHERE project_element_id = ?",
		projectElementID,
	).Scan(&record.ProjectElementID, &record.RenderedText, &record.IsStale, &record.InputRevision, &renderedAt)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("rendered description", projectElementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rendered description: %w", err)
	}

	record.RenderedAt = formatNullTime(renderedAt)
	return record, nil
}

// Save writes rendered text and clears the stale flag if the input revision
// is unchanged since the inputs were loaded.
func (r *RenderedRepository) Save(ctx context.Context, projectElementID, text string, inputRevision int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE rendered_descriptions SET rendered_text = ?, is_stale = 0, rendered_at = CURRENT_TIMESTAMP WHERE project_element_id = ? AND input_revision = ?",
		text, projectElementID, inputRevision,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save rendered description: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected == 1, nil
}

// ListStale retrieves the IDs of instances whose cache is stale.
func (r *RenderedRepository) ListStale(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT project_element_id FROM rendered_descriptions WHERE is_stale = 1 ORDER BY project_element_id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale descriptions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stale id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Ensure RenderedRepository implements the interface.
var _ secondary.RenderedRepository = (*RenderedRepository)(nil)
