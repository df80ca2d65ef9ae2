package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter on the change_log table.
type LogWriterAdapter struct {
	db *sql.DB
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(db *sql.DB) *LogWriterAdapter {
	return &LogWriterAdapter{db: db}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update operation for an entity field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// List returns the change log of one entity, oldest first. An empty
// entityID lists every entry.
func (w *LogWriterAdapter) List(ctx context.Context, entityID string) ([]*secondary.ChangeRecord, error) {
	query := "SELECT id, actor, entity_type, entity_id, action, field_name, old_value, new_value, created_at FROM change_log"
	var args []any
	if entityID != "" {
		query += " WHERE entity_id = ?"
		args = append(args, entityID)
	}
	query += " ORDER BY CAST(SUBSTR(id, 5) AS INTEGER) ASC"

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list change log: %w", err)
	}
	defer rows.Close()

	var changes []*secondary.ChangeRecord
	for rows.Next() {
		var (
			fieldName, oldValue, newValue sql.NullString
			createdAt                     time.Time
		)
		record := &secondary.ChangeRecord{}
		if err := rows.Scan(&record.ID, &record.Actor, &record.EntityType, &record.EntityID, &record.Action,
			&fieldName, &oldValue, &newValue, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		record.FieldName = fieldName.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String
		record.CreatedAt = formatTime(createdAt)
		changes = append(changes, record)
	}
	return changes, rows.Err()
}

// writeLog writes a log entry with common logic.
func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	actor := ctxutil.ResolveActor(ctx, "")

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextID(ctx, tx, "change_log", "LOG")
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO change_log (id, actor, entity_type, entity_id, action, field_name, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, actor, entityType, entityID, action, nullString(fieldName), nullString(oldValue), nullString(newValue),
	); err != nil {
		return fmt.Errorf("failed to write change log: %w", err)
	}

	return tx.Commit()
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)
