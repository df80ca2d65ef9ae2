// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/elemcat/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// Foreign keys are enforced and the pool is pinned to a single connection so
// every query sees the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedElement inserts a test element and returns its ID.
func seedElement(t *testing.T, db *sql.DB, id, code string) string {
	t.Helper()
	if id == "" {
		id = "ELEM-001"
	}
	if code == "" {
		code = "MC-01"
	}
	_, err := db.Exec("INSERT INTO elements (id, code, name, category, created_by) VALUES (?, ?, 'Muro cortina', 'MURO CORTINA', 'test')", id, code)
	if err != nil {
		t.Fatalf("failed to seed element: %v", err)
	}
	return id
}

// seedVariable inserts a test text variable and returns its ID.
func seedVariable(t *testing.T, db *sql.DB, id, elementID, name string) string {
	t.Helper()
	if id == "" {
		id = "VAR-001"
	}
	if elementID == "" {
		elementID = "ELEM-001"
	}
	if name == "" {
		name = "tipo_vidrio"
	}
	_, err := db.Exec("INSERT INTO element_variables (id, element_id, name, type) VALUES (?, ?, ?, 'text')", id, elementID, name)
	if err != nil {
		t.Fatalf("failed to seed variable: %v", err)
	}
	return id
}

// seedVersion inserts a test description version and returns its ID.
func seedVersion(t *testing.T, db *sql.DB, id, elementID string, number int, text, state string, active bool) string {
	t.Helper()
	if id == "" {
		id = "VER-001"
	}
	if elementID == "" {
		elementID = "ELEM-001"
	}
	if state == "" {
		state = "S0"
	}
	_, err := db.Exec(
		"INSERT INTO description_versions (id, element_id, version_number, template_text, state, is_active, created_by) VALUES (?, ?, ?, ?, ?, ?, 'test')",
		id, elementID, number, text, state, active,
	)
	if err != nil {
		t.Fatalf("failed to seed version: %v", err)
	}
	return id
}

// seedMapping binds a placeholder of a version to a variable.
func seedMapping(t *testing.T, db *sql.DB, versionID, variableID, placeholder string, position int) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO template_variable_mappings (version_id, variable_id, placeholder, position) VALUES (?, ?, ?, ?)",
		versionID, variableID, placeholder, position,
	)
	if err != nil {
		t.Fatalf("failed to seed mapping: %v", err)
	}
}

// seedProject inserts a test project and returns its ID.
func seedProject(t *testing.T, db *sql.DB, id, code string) string {
	t.Helper()
	if id == "" {
		id = "PROJ-001"
	}
	if code == "" {
		code = "OBRA-01"
	}
	_, err := db.Exec("INSERT INTO projects (id, code, name, created_by) VALUES (?, ?, 'Obra de prueba', 'test')", id, code)
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return id
}

// seedProjectElement inserts a test instance with its stale rendered row and returns its ID.
func seedProjectElement(t *testing.T, db *sql.DB, id, projectID, elementID, versionID, instanceCode string) string {
	t.Helper()
	if id == "" {
		id = "PE-001"
	}
	if instanceCode == "" {
		instanceCode = "MC-01-N"
	}
	_, err := db.Exec(
		"INSERT INTO project_elements (id, project_id, element_id, description_version_id, instance_code, instance_name, created_by) VALUES (?, ?, ?, ?, ?, 'Instancia', 'test')",
		id, projectID, elementID, versionID, instanceCode,
	)
	if err != nil {
		t.Fatalf("failed to seed project element: %v", err)
	}
	if _, err := db.Exec("INSERT INTO rendered_descriptions (project_element_id) VALUES (?)", id); err != nil {
		t.Fatalf("failed to seed rendered description: %v", err)
	}
	return id
}
