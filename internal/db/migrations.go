package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "catalog_workflow_project_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_revision_counters",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_change_log",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_project_dates",
		Up:      migrationV4,
	},
}

func ensureVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations applies every migration newer than the recorded schema version.
func RunMigrations(database *sql.DB) error {
	if err := ensureVersionTable(database); err != nil {
		return err
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the base tables. Revision counters arrive in V2.
func migrationV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS elements (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT,
			price REAL,
			created_by TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_by TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS element_variables (
			id TEXT PRIMARY KEY,
			element_id TEXT NOT NULL REFERENCES elements(id),
			name TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('text', 'numeric', 'single_choice', 'multi_choice')),
			unit TEXT,
			default_value TEXT,
			is_required INTEGER NOT NULL DEFAULT 0,
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(element_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS variable_options (
			id TEXT PRIMARY KEY,
			variable_id TEXT NOT NULL REFERENCES element_variables(id),
			value TEXT NOT NULL,
			label TEXT NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0,
			is_default INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(variable_id, value)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_variable_options_default ON variable_options(variable_id) WHERE is_default = 1`,
		`CREATE TABLE IF NOT EXISTS description_versions (
			id TEXT PRIMARY KEY,
			element_id TEXT NOT NULL REFERENCES elements(id),
			version_number INTEGER NOT NULL,
			template_text TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT 'S0' CHECK(state = 'D' OR state GLOB 'S[0-9]*'),
			is_active INTEGER NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(element_id, version_number)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_description_versions_active ON description_versions(element_id) WHERE is_active = 1`,
		`CREATE TABLE IF NOT EXISTS version_approvals (
			id TEXT PRIMARY KEY,
			version_id TEXT NOT NULL REFERENCES description_versions(id),
			from_state TEXT NOT NULL,
			to_state TEXT NOT NULL,
			actor TEXT NOT NULL,
			comment TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS template_variable_mappings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version_id TEXT NOT NULL REFERENCES description_versions(id),
			variable_id TEXT NOT NULL REFERENCES element_variables(id),
			placeholder TEXT NOT NULL,
			position INTEGER NOT NULL CHECK(position > 0),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(version_id, placeholder),
			UNIQUE(version_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			location TEXT,
			created_by TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS project_elements (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id),
			element_id TEXT NOT NULL REFERENCES elements(id),
			description_version_id TEXT NOT NULL REFERENCES description_versions(id),
			instance_code TEXT NOT NULL,
			instance_name TEXT NOT NULL,
			location TEXT,
			created_by TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(project_id, instance_code)
		)`,
		`CREATE TABLE IF NOT EXISTS project_element_values (
			project_element_id TEXT NOT NULL REFERENCES project_elements(id),
			variable_id TEXT NOT NULL REFERENCES element_variables(id),
			value TEXT NOT NULL,
			updated_by TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (project_element_id, variable_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rendered_descriptions (
			project_element_id TEXT PRIMARY KEY REFERENCES project_elements(id),
			rendered_text TEXT NOT NULL DEFAULT '',
			is_stale INTEGER NOT NULL DEFAULT 1,
			rendered_at DATETIME
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV2 adds the compare-and-swap counters and the secondary indexes.
func migrationV2(tx *sql.Tx) error {
	stmts := []string{
		`ALTER TABLE project_element_values ADD COLUMN revision INTEGER NOT NULL DEFAULT 1`,
		`ALTER TABLE rendered_descriptions ADD COLUMN input_revision INTEGER NOT NULL DEFAULT 0`,
		`CREATE INDEX IF NOT EXISTS idx_elements_category ON elements(category)`,
		`CREATE INDEX IF NOT EXISTS idx_element_variables_element ON element_variables(element_id, display_order)`,
		`CREATE INDEX IF NOT EXISTS idx_description_versions_state ON description_versions(state)`,
		`CREATE INDEX IF NOT EXISTS idx_version_approvals_version ON version_approvals(version_id)`,
		`CREATE INDEX IF NOT EXISTS idx_template_mappings_variable ON template_variable_mappings(variable_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rendered_descriptions_stale ON rendered_descriptions(project_element_id) WHERE is_stale = 1`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV3 adds the change log.
func migrationV3(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS change_log (
			id TEXT PRIMARY KEY,
			actor TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL CHECK (action IN ('create', 'update')),
			field_name TEXT,
			old_value TEXT,
			new_value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_change_log_entity ON change_log(entity_id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV4 adds optional project start and end dates.
func migrationV4(tx *sql.Tx) error {
	for _, stmt := range []string{
		`ALTER TABLE projects ADD COLUMN start_date TEXT`,
		`ALTER TABLE projects ADD COLUMN end_date TEXT`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
