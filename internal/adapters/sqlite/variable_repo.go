package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ports/secondary"
)

// VariableRepository implements secondary.VariableRepository with SQLite.
type VariableRepository struct {
	db *sql.DB
}

// NewVariableRepository creates a new SQLite variable repository.
func NewVariableRepository(db *sql.DB) *VariableRepository {
	return &VariableRepository{db: db}
}

const variableColumns = "id, element_id, name, type, unit, default_value, is_required, display_order, created_at"

// CreateWithOptions persists a variable and its options in one transaction.
// The variable ID is assigned inside the transaction when empty.
func (r *VariableRepository) CreateWithOptions(ctx context.Context, variable *secondary.VariableRecord, options []*secondary.OptionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if variable.ID == "" {
		id, err := nextID(ctx, tx, "element_variables", "VAR")
		if err != nil {
			return err
		}
		variable.ID = id
	}

	if variable.DisplayOrder == 0 {
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(display_order), 0) + 1 FROM element_variables WHERE element_id = ?",
			variable.ElementID,
		).Scan(&variable.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to compute display order: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO element_variables (id, element_id, name, type, unit, default_value, is_required, display_order) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		variable.ID, variable.ElementID, variable.Name, variable.Type,
		nullString(variable.Unit), nullString(variable.DefaultValue), variable.Required, variable.DisplayOrder,
	)
	if err != nil {
		return translateWriteError(err, "variable", variable.Name)
	}

	for i, opt := range options {
		opt.VariableID = variable.ID
		if opt.DisplayOrder == 0 {
			opt.DisplayOrder = i + 1
		}
		if err := insertOption(ctx, tx, opt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit variable: %w", err)
	}
	return nil
}

// GetByID retrieves a variable by its ID.
func (r *VariableRepository) GetByID(ctx context.Context, id string) (*secondary.VariableRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+variableColumns+" FROM element_variables WHERE id = ?", id)
	record, err := scanVariable(row)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("variable", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get variable: %w", err)
	}
	return record, nil
}

// ListByElement retrieves the variables of an element ordered by display order.
func (r *VariableRepository) ListByElement(ctx context.Context, elementID string) ([]*secondary.VariableRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+variableColumns+" FROM element_variables WHERE element_id = ? ORDER BY display_order ASC, id ASC",
		elementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	defer rows.Close()

	var variables []*secondary.VariableRecord
	for rows.Next() {
		record, err := scanVariable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}
		variables = append(variables, record)
	}
	return variables, rows.Err()
}

// NameExists checks if a variable name is taken on an element.
func (r *VariableRepository) NameExists(ctx context.Context, elementID, name string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT COUNT(*) FROM element_variables WHERE element_id = ? AND name = ?", elementID, name)
	if err != nil {
		return false, fmt.Errorf("failed to check variable name: %w", err)
	}
	return found, nil
}

// AddOption persists an option, moving the default flag to it when requested.
func (r *VariableRepository) AddOption(ctx context.Context, option *secondary.OptionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if option.DisplayOrder == 0 {
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(display_order), 0) + 1 FROM variable_options WHERE variable_id = ?",
			option.VariableID,
		).Scan(&option.DisplayOrder)
		if err != nil {
			return fmt.Errorf("failed to compute display order: %w", err)
		}
	}

	if option.IsDefault {
		if _, err := tx.ExecContext(ctx, "UPDATE variable_options SET is_default = 0 WHERE variable_id = ?", option.VariableID); err != nil {
			return fmt.Errorf("failed to clear default option: %w", err)
		}
	}

	if err := insertOption(ctx, tx, option); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit option: %w", err)
	}
	return nil
}

// ListOptions retrieves the options of a variable ordered by display order.
func (r *VariableRepository) ListOptions(ctx context.Context, variableID string) ([]*secondary.OptionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, variable_id, value, label, display_order, is_default FROM variable_options WHERE variable_id = ? ORDER BY display_order ASC, id ASC",
		variableID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []*secondary.OptionRecord
	for rows.Next() {
		opt := &secondary.OptionRecord{}
		if err := rows.Scan(&opt.ID, &opt.VariableID, &opt.Value, &opt.Label, &opt.DisplayOrder, &opt.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

// OptionValueExists checks if an option value is taken on a variable.
func (r *VariableRepository) OptionValueExists(ctx context.Context, variableID, value string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT COUNT(*) FROM variable_options WHERE variable_id = ? AND value = ?", variableID, value)
	if err != nil {
		return false, fmt.Errorf("failed to check option value: %w", err)
	}
	return found, nil
}

// SetDefaultOption moves the default flag of a variable to the given option.
func (r *VariableRepository) SetDefaultOption(ctx context.Context, variableID, optionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, "SELECT COUNT(*) FROM variable_options WHERE id = ? AND variable_id = ?", optionID, variableID)
	if err != nil {
		return fmt.Errorf("failed to check option: %w", err)
	}
	if !found {
		return errkind.NotFound("option", optionID)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE variable_options SET is_default = 0 WHERE variable_id = ?", variableID); err != nil {
		return fmt.Errorf("failed to clear default option: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE variable_options SET is_default = 1 WHERE id = ?", optionID); err != nil {
		return fmt.Errorf("failed to set default option: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit default option: %w", err)
	}
	return nil
}

// insertOption assigns the next option ID and inserts the row inside tx.
func insertOption(ctx context.Context, tx *sql.Tx, opt *secondary.OptionRecord) error {
	id, err := nextID(ctx, tx, "variable_options", "OPT")
	if err != nil {
		return err
	}
	opt.ID = id
	if opt.Label == "" {
		opt.Label = opt.Value
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO variable_options (id, variable_id, value, label, display_order, is_default) VALUES (?, ?, ?, ?, ?, ?)",
		opt.ID, opt.VariableID, opt.Value, opt.Label, opt.DisplayOrder, opt.IsDefault,
	)
	if err != nil {
		return translateWriteError(err, "option", opt.Value)
	}
	return nil
}

func scanVariable(s rowScanner) (*secondary.VariableRecord, error) {
	var (
		unit         sql.NullString
		defaultValue sql.NullString
		createdAt    time.Time
	)

	record := &secondary.VariableRecord{}
	if err := s.Scan(&record.ID, &record.ElementID, &record.Name, &record.Type, &unit, &defaultValue, &record.Required, &record.DisplayOrder, &createdAt); err != nil {
		return nil, err
	}

	record.Unit = unit.String
	record.DefaultValue = defaultValue.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Ensure VariableRepository implements the interface.
var _ secondary.VariableRepository = (*VariableRepository)(nil)
