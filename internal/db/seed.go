package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with a small demo catalog: one curtain
// wall element with an active template, one project and one instance of it.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format("2006-01-02 15:04:05")

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	elements := []struct{ id, code, name, category string }{
		{"ELEM-001", "MC-01", "Muro cortina de vidrio", "MURO CORTINA"},
		{"ELEM-002", "CP-01", "Carpintería de aluminio", "CARPINTERIA"},
	}
	for _, e := range elements {
		if _, err := tx.Exec(
			"INSERT INTO elements (id, code, name, category, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, 'seed', ?, ?)",
			e.id, e.code, e.name, e.category, now, now,
		); err != nil {
			return fmt.Errorf("seed elements: %w", err)
		}
	}

	variables := []struct {
		id, elementID, name, varType, unit, def string
		order                                   int
	}{
		{"VAR-001", "ELEM-001", "tipo_vidrio", "single_choice", "", "Templado", 1},
		{"VAR-002", "ELEM-001", "espesor", "numeric", "mm", "", 2},
		{"VAR-003", "ELEM-002", "acabado", "text", "", "", 1},
	}
	for _, v := range variables {
		if _, err := tx.Exec(
			"INSERT INTO element_variables (id, element_id, name, type, unit, default_value, is_required, display_order, created_at) VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), 1, ?, ?)",
			v.id, v.elementID, v.name, v.varType, v.unit, v.def, v.order, now,
		); err != nil {
			return fmt.Errorf("seed variables: %w", err)
		}
	}

	options := []struct {
		id, variableID, value string
		order                 int
		isDefault             bool
	}{
		{"OPT-001", "VAR-001", "Templado", 1, true},
		{"OPT-002", "VAR-001", "Laminado", 2, false},
		{"OPT-003", "VAR-001", "Doble Bajo Emisivo", 3, false},
	}
	for _, o := range options {
		if _, err := tx.Exec(
			"INSERT INTO variable_options (id, variable_id, value, label, display_order, is_default, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			o.id, o.variableID, o.value, o.value, o.order, o.isDefault, now,
		); err != nil {
			return fmt.Errorf("seed options: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO description_versions (id, element_id, version_number, template_text, state, is_active, created_by, created_at, updated_at) VALUES ('VER-001', 'ELEM-001', 1, ?, 'S3', 1, 'seed', ?, ?)",
		"Muro cortina con vidrio {tipo_vidrio} de {espesor} mm.", now, now,
	); err != nil {
		return fmt.Errorf("seed versions: %w", err)
	}
	for i, p := range []struct{ placeholder, variableID string }{{"tipo_vidrio", "VAR-001"}, {"espesor", "VAR-002"}} {
		if _, err := tx.Exec(
			"INSERT INTO template_variable_mappings (version_id, variable_id, placeholder, position, created_at) VALUES ('VER-001', ?, ?, ?, ?)",
			p.variableID, p.placeholder, i+1, now,
		); err != nil {
			return fmt.Errorf("seed mappings: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO projects (id, code, name, status, start_date, location, created_by, created_at, updated_at) VALUES ('PROJ-001', 'OBRA-2024-01', 'Nave logística', 'active', '2024-01-15', 'Barcelona', 'seed', ?, ?)",
		now, now,
	); err != nil {
		return fmt.Errorf("seed projects: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO project_elements (id, project_id, element_id, description_version_id, instance_code, instance_name, created_by, created_at, updated_at) VALUES ('PE-001', 'PROJ-001', 'ELEM-001', 'VER-001', 'MC-01-FACHADA-N', 'Fachada norte', 'seed', ?, ?)",
		now, now,
	); err != nil {
		return fmt.Errorf("seed project elements: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO rendered_descriptions (project_element_id, is_stale) VALUES ('PE-001', 1)"); err != nil {
		return fmt.Errorf("seed rendered descriptions: %w", err)
	}

	return tx.Commit()
}
