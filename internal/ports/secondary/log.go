package secondary

import "context"

// LogWriter defines the interface for writing change log entries.
// Implementations take the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error
}

// ChangeRecord is one change log entry.
type ChangeRecord struct {
	ID         string
	Actor      string
	EntityType string
	EntityID   string
	Action     string // create, update
	FieldName  string
	OldValue   string
	NewValue   string
	CreatedAt  string
}
