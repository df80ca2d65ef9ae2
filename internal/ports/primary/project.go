package primary

import "context"

// ProjectService defines the primary port for projects and element instances.
type ProjectService interface {
	// CreateProject creates a new project.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResponse, error)

	// GetProject retrieves a project by business code.
	GetProject(ctx context.Context, code string) (*Project, error)

	// ListProjects lists all projects.
	ListProjects(ctx context.Context) ([]*Project, error)

	// CreateProjectElement instantiates an element in a project, pinned to a version.
	CreateProjectElement(ctx context.Context, req CreateProjectElementRequest) (*CreateProjectElementResponse, error)

	// GetProjectElement retrieves one instance with its values.
	GetProjectElement(ctx context.Context, projectElementID string) (*ProjectElement, error)

	// GetProjectElements lists a project's instances with their values.
	GetProjectElements(ctx context.Context, projectID string) ([]*ProjectElement, error)

	// SetValue stores the value of a variable on an instance.
	SetValue(ctx context.Context, req SetValueRequest) (*SetValueResponse, error)
}

// CreateProjectRequest contains parameters for creating a project.
type CreateProjectRequest struct {
	Code     string
	Name     string
	Status    string // optional, defaults to "active"
	StartDate string // optional, YYYY-MM-DD
	EndDate   string // optional, YYYY-MM-DD, not before StartDate
	Location  string // optional
	Author    string
}

// CreateProjectResponse contains the result of creating a project.
type CreateProjectResponse struct {
	ProjectID string
	Project   *Project
}

// Project represents a project at the port boundary.
type Project struct {
	ID        string
	Code      string
	Name      string
	Status    string
	StartDate string
	EndDate   string
	Location  string
	CreatedBy string
	CreatedAt string
	UpdatedAt string
}

// CreateProjectElementRequest contains parameters for instantiating an element.
type CreateProjectElementRequest struct {
	ProjectID    string
	ElementID    string
	VersionID    string
	InstanceCode string
	InstanceName string
	Location     string
	Author       string
}

// CreateProjectElementResponse contains the result of instantiating an element.
type CreateProjectElementResponse struct {
	ProjectElementID string
	ProjectElement   *ProjectElement
}

// ProjectElement represents an element instance at the port boundary.
type ProjectElement struct {
	ID           string
	ProjectID    string
	ElementID    string
	VersionID    string
	InstanceCode string
	InstanceName string
	Location     string
	CreatedBy    string
	CreatedAt    string
	Values       []*Value
}

// Value is the current value of one variable on an instance.
type Value struct {
	VariableID   string
	VariableName string
	Value        string
	Revision     int
	UpdatedBy    string
	UpdatedAt    string
}

// SetValueRequest contains parameters for setting a value.
type SetValueRequest struct {
	ProjectElementID string
	VariableID       string
	Value            string
	Author           string
	ExpectedRevision int // 0 means last write wins
}

// SetValueResponse contains the result of setting a value.
type SetValueResponse struct {
	Revision int
}
