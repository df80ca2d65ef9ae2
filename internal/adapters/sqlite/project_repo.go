package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/elemcat/internal/core/errkind"
	"github.com/example/elemcat/internal/ports/secondary"
)

// ProjectRepository implements secondary.ProjectRepository with SQLite.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = "id, code, name, status, start_date, end_date, location, created_by, created_at, updated_at"

// Create persists a new project. The ID is assigned inside the insert
// transaction when empty.
func (r *ProjectRepository) Create(ctx context.Context, project *secondary.ProjectRecord) error {
	status := project.Status
	if status == "" {
		status = "active"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if project.ID == "" {
		id, err := nextID(ctx, tx, "projects", "PROJ")
		if err != nil {
			return err
		}
		project.ID = id
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO projects (id, code, name, status, start_date, end_date, location, created_by) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		project.ID, project.Code, project.Name, status, nullString(project.StartDate), nullString(project.EndDate), nullString(project.Location), project.CreatedBy,
	)
	if err != nil {
		return translateWriteError(err, "project code", project.Code)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project: %w", err)
	}
	project.Status = status
	return nil
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	record, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return record, nil
}

// GetByCode retrieves a project by its business code.
func (r *ProjectRepository) GetByCode(ctx context.Context, code string) (*secondary.ProjectRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE code = ?", code)
	record, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, errkind.NotFound("project", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return record, nil
}

// List retrieves all projects ordered by code.
func (r *ProjectRepository) List(ctx context.Context) ([]*secondary.ProjectRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY code ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*secondary.ProjectRecord
	for rows.Next() {
		record, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, record)
	}
	return projects, rows.Err()
}

// CodeExists checks if a project code is taken.
func (r *ProjectRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	found, err := exists(ctx, r.db, "SELECT COUNT(*) FROM projects WHERE code = ?", code)
	if err != nil {
		return false, fmt.Errorf("failed to check project code: %w", err)
	}
	return found, nil
}

func scanProject(s rowScanner) (*secondary.ProjectRecord, error) {
	var (
		startDate sql.NullString
		endDate   sql.NullString
		location  sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.ProjectRecord{}
	if err := s.Scan(&record.ID, &record.Code, &record.Name, &record.Status, &startDate, &endDate, &location, &record.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record.StartDate = startDate.String
	record.EndDate = endDate.String
	record.Location = location.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

// Ensure ProjectRepository implements the interface.
var _ secondary.ProjectRepository = (*ProjectRepository)(nil)
