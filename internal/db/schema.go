package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All repository
// tests load it via GetSchemaSQL() instead of declaring their own tables, so a
// repository that references a missing column fails immediately with
// "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run the tests to verify alignment
const SchemaSQL = `
-- Catalog elements
CREATE TABLE IF NOT EXISTS elements (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	category TEXT,
	price REAL,
	created_by TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_by TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_elements_category ON elements(category);

-- Element variables (typed parameters of an element)
CREATE TABLE IF NOT EXISTS element_variables (
	id TEXT PRIMARY KEY,
	element_id TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('text', 'numeric', 'single_choice', 'multi_choice')),
	unit TEXT,
	default_value TEXT,
	is_required INTEGER NOT NULL DEFAULT 0,
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (element_id) REFERENCES elements(id),
	UNIQUE(element_id, name)
);

CREATE INDEX IF NOT EXISTS idx_element_variables_element ON element_variables(element_id, display_order);

-- Variable options (selectable values of choice variables)
CREATE TABLE IF NOT EXISTS variable_options (
	id TEXT PRIMARY KEY,
	variable_id TEXT NOT NULL,
	value TEXT NOT NULL,
	label TEXT NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0,
	is_default INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (variable_id) REFERENCES element_variables(id),
	UNIQUE(variable_id, value)
);

-- At most one default option per variable
CREATE UNIQUE INDEX IF NOT EXISTS idx_variable_options_default ON variable_options(variable_id) WHERE is_default = 1;

-- Description versions (template text + approval state)
CREATE TABLE IF NOT EXISTS description_versions (
	id TEXT PRIMARY KEY,
	element_id TEXT NOT NULL,
	version_number INTEGER NOT NULL,
	template_text TEXT NOT NULL,
	state TEXT NOT NULL DEFAULT 'S0' CHECK(state = 'D' OR state GLOB 'S[0-9]*'),
	is_active INTEGER NOT NULL DEFAULT 0,
	created_by TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (element_id) REFERENCES elements(id),
	UNIQUE(element_id, version_number)
);

-- At most one active version per element
CREATE UNIQUE INDEX IF NOT EXISTS idx_description_versions_active ON description_versions(element_id) WHERE is_active = 1;
CREATE INDEX IF NOT EXISTS idx_description_versions_state ON description_versions(state);

-- Approval log of description versions
CREATE TABLE IF NOT EXISTS version_approvals (
	id TEXT PRIMARY KEY,
	version_id TEXT NOT NULL,
	from_state TEXT NOT NULL,
	to_state TEXT NOT NULL,
	actor TEXT NOT NULL,
	comment TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (version_id) REFERENCES description_versions(id)
);

CREATE INDEX IF NOT EXISTS idx_version_approvals_version ON version_approvals(version_id);

-- Placeholder bindings per version
CREATE TABLE IF NOT EXISTS template_variable_mappings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id TEXT NOT NULL,
	variable_id TEXT NOT NULL,
	placeholder TEXT NOT NULL,
	position INTEGER NOT NULL CHECK(position > 0),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (version_id) REFERENCES description_versions(id),
	FOREIGN KEY (variable_id) REFERENCES element_variables(id),
	UNIQUE(version_id, placeholder),
	UNIQUE(version_id, position)
);

CREATE INDEX IF NOT EXISTS idx_template_mappings_variable ON template_variable_mappings(variable_id);

-- Projects
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	start_date TEXT,
	end_date TEXT,
	location TEXT,
	created_by TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Element instances inside projects, pinned to one description version
CREATE TABLE IF NOT EXISTS project_elements (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	element_id TEXT NOT NULL,
	description_version_id TEXT NOT NULL,
	instance_code TEXT NOT NULL,
	instance_name TEXT NOT NULL,
	location TEXT,
	created_by TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id),
	FOREIGN KEY (element_id) REFERENCES elements(id),
	FOREIGN KEY (description_version_id) REFERENCES description_versions(id),
	UNIQUE(project_id, instance_code)
);

-- Concrete values per instance and variable
CREATE TABLE IF NOT EXISTS project_element_values (
	project_element_id TEXT NOT NULL,
	variable_id TEXT NOT NULL,
	value TEXT NOT NULL,
	revision INTEGER NOT NULL DEFAULT 1,
	updated_by TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (project_element_id, variable_id),
	FOREIGN KEY (project_element_id) REFERENCES project_elements(id),
	FOREIGN KEY (variable_id) REFERENCES element_variables(id)
);

-- Rendered description cache, 1:1 with project_elements
CREATE TABLE IF NOT EXISTS rendered_descriptions (
	project_element_id TEXT PRIMARY KEY,
	rendered_text TEXT NOT NULL DEFAULT '',
	is_stale INTEGER NOT NULL DEFAULT 1,
	input_revision INTEGER NOT NULL DEFAULT 0,
	rendered_at DATETIME,
	FOREIGN KEY (project_element_id) REFERENCES project_elements(id)
);

CREATE INDEX IF NOT EXISTS idx_rendered_descriptions_stale ON rendered_descriptions(project_element_id) WHERE is_stale = 1;

-- Change log (audit trail of catalog and project edits)
CREATE TABLE IF NOT EXISTS change_log (
	id TEXT PRIMARY KEY,
	actor TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK (action IN ('create', 'update')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_change_log_entity ON change_log(entity_id);
`

// InitSchema creates the database schema on a fresh database and runs
// pending migrations on an existing one.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	// Fresh install - create the current schema directly and mark every
	// migration as applied.
	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
