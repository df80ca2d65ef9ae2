// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// ElementRepository defines the secondary port for catalog element persistence.
type ElementRepository interface {
	// Create persists a new element. An empty ID is assigned inside the
	// insert transaction and set on the record.
	Create(ctx context.Context, element *ElementRecord) error

	// GetByID retrieves an element by its ID.
	GetByID(ctx context.Context, id string) (*ElementRecord, error)

	// GetByCode retrieves an element by its business code.
	GetByCode(ctx context.Context, code string) (*ElementRecord, error)

	// List retrieves elements matching the given filters, ordered by code.
	List(ctx context.Context, filters ElementFilters) ([]*ElementRecord, error)

	// CodeExists checks if an element code is taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// UpdatePrice sets or clears the element price.
	UpdatePrice(ctx context.Context, id string, price *float64, updatedBy string) error
}

// ElementRecord represents a catalog element as stored in persistence.
type ElementRecord struct {
	ID        string
	Code      string
	Name      string
	Category  string   // Empty string means null
	Price     *float64 // nil means null
	CreatedBy string
	CreatedAt string
	UpdatedBy string
	UpdatedAt string
}

// ElementFilters contains filter options for querying elements.
type ElementFilters struct {
	Category string
}

// VariableRepository defines the secondary port for element variables and their options.
type VariableRepository interface {
	// CreateWithOptions persists a variable and its options in one transaction.
	// Option IDs, and the variable ID when empty, are assigned by the repository.
	CreateWithOptions(ctx context.Context, variable *VariableRecord, options []*OptionRecord) error

	// GetByID retrieves a variable by its ID.
	GetByID(ctx context.Context, id string) (*VariableRecord, error)

	// ListByElement retrieves the variables of an element ordered by display order.
	ListByElement(ctx context.Context, elementID string) ([]*VariableRecord, error)

	// NameExists checks if a variable name is taken on an element.
	NameExists(ctx context.Context, elementID, name string) (bool, error)

	// AddOption persists an option; when IsDefault, clears any other default
	// of the same variable in the same transaction. The ID is assigned by the repository.
	AddOption(ctx context.Context, option *OptionRecord) error

	// ListOptions retrieves the options of a variable ordered by display order.
	ListOptions(ctx context.Context, variableID string) ([]*OptionRecord, error)

	// OptionValueExists checks if an option value is taken on a variable.
	OptionValueExists(ctx context.Context, variableID, value string) (bool, error)

	// SetDefaultOption moves the default flag of a variable to the given option.
	SetDefaultOption(ctx context.Context, variableID, optionID string) error
}

// VariableRecord represents an element variable as stored in persistence.
type VariableRecord struct {
	ID           string
	ElementID    string
	Name         string
	Type         string
	Unit         string // Empty string means null
	DefaultValue string // Empty string means null
	Required     bool
	DisplayOrder int
	CreatedAt    string
}

// OptionRecord represents a variable option as stored in persistence.
type OptionRecord struct {
	ID           string
	VariableID   string
	Value        string
	Label        string
	DisplayOrder int
	IsDefault    bool
}

// VersionRepository defines the secondary port for description versions,
// their approval log and their placeholder mappings.
type VersionRepository interface {
	// Create persists a new version, assigning version_number = max+1 for the
	// element inside the same transaction. VersionNumber is set on the record.
	Create(ctx context.Context, version *VersionRecord) error

	// GetByID retrieves a version by its ID.
	GetByID(ctx context.Context, id string) (*VersionRecord, error)

	// ListByElement retrieves the versions of an element, newest first.
	ListByElement(ctx context.Context, elementID string) ([]*VersionRecord, error)

	// ListByStates retrieves versions in any of the given states.
	ListByStates(ctx context.Context, states []string) ([]*VersionRecord, error)

	// GetActive retrieves the active version of an element.
	GetActive(ctx context.Context, elementID string) (*VersionRecord, error)

	// ApplyTransition moves a version from one state to another and appends
	// the approval log entry, in one transaction. When activate is true the
	// element's previously active version is demoted in the same transaction.
	// Fails with ErrConflict if the stored state is no longer from.
	ApplyTransition(ctx context.Context, t *TransitionRecord) error

	// ListApprovals retrieves the approval log of a version, oldest first.
	ListApprovals(ctx context.Context, versionID string) ([]*ApprovalRecord, error)

	// CreateMapping persists a placeholder binding.
	CreateMapping(ctx context.Context, mapping *MappingRecord) error

	// ListMappings retrieves the bindings of a version ordered by position.
	ListMappings(ctx context.Context, versionID string) ([]*MappingRecord, error)
}

// VersionRecord represents a description version as stored in persistence.
type VersionRecord struct {
	ID            string
	ElementID     string
	VersionNumber int
	TemplateText  string
	State         string
	IsActive      bool
	CreatedBy     string
	CreatedAt     string
	UpdatedAt     string
}

// TransitionRecord describes one state change of a version.
type TransitionRecord struct {
	VersionID string
	ElementID string
	FromState string
	ToState   string
	Activate  bool
	Approval  *ApprovalRecord
}

// ApprovalRecord is one entry of a version's approval log.
type ApprovalRecord struct {
	ID        string
	VersionID string
	FromState string
	ToState   string
	Actor     string
	Comment   string // Empty string means null
	CreatedAt string
}

// MappingRecord binds a placeholder of a version to a variable.
type MappingRecord struct {
	ID          string
	VersionID   string
	VariableID  string
	Placeholder string // bare identifier, without braces
	Position    int
	CreatedAt   string
}

// ProjectRepository defines the secondary port for project persistence.
type ProjectRepository interface {
	// Create persists a new project. An empty ID is assigned inside the
	// insert transaction and set on the record.
	Create(ctx context.Context, project *ProjectRecord) error

	// GetByID retrieves a project by its ID.
	GetByID(ctx context.Context, id string) (*ProjectRecord, error)

	// GetByCode retrieves a project by its business code.
	GetByCode(ctx context.Context, code string) (*ProjectRecord, error)

	// List retrieves all projects ordered by code.
	List(ctx context.Context) ([]*ProjectRecord, error)

	// CodeExists checks if a project code is taken.
	CodeExists(ctx context.Context, code string) (bool, error)
}

// ProjectRecord represents a project as stored in persistence.
type ProjectRecord struct {
	ID        string
	Code      string
	Name      string
	Status    string
	StartDate string // YYYY-MM-DD, empty string means null
	EndDate   string // YYYY-MM-DD, empty string means null
	Location  string // Empty string means null
	CreatedBy string
	CreatedAt string
	UpdatedAt string
}

// ProjectElementRepository defines the secondary port for element instances
// inside projects and their values.
type ProjectElementRepository interface {
	// Create persists a new instance together with its stale rendered
	// description row, in one transaction.
	Create(ctx context.Context, pe *ProjectElementRecord) error

	// GetByID retrieves an instance by its ID.
	GetByID(ctx context.Context, id string) (*ProjectElementRecord, error)

	// ListByProject retrieves the instances of a project ordered by instance code.
	ListByProject(ctx context.Context, projectID string) ([]*ProjectElementRecord, error)

	// InstanceCodeExists checks if an instance code is taken within a project.
	InstanceCodeExists(ctx context.Context, projectID, instanceCode string) (bool, error)

	// GetValue retrieves one value, or nil if none is stored.
	GetValue(ctx context.Context, projectElementID, variableID string) (*ValueRecord, error)

	// ListValues retrieves all values of an instance.
	ListValues(ctx context.Context, projectElementID string) ([]*ValueRecord, error)

	// UpsertValue stores a value (last write wins) and marks the instance's
	// rendered description stale, in one transaction. When expectedRevision
	// is positive the write only happens if the stored revision matches;
	// otherwise it fails with ErrConflict.
	UpsertValue(ctx context.Context, value *ValueRecord, expectedRevision int) error
}

// ProjectElementRecord represents an element instance as stored in persistence.
type ProjectElementRecord struct {
	ID           string
	ProjectID    string
	ElementID    string
	VersionID    string // pinned at creation
	InstanceCode string
	InstanceName string
	Location     string // Empty string means null
	CreatedBy    string
	CreatedAt    string
	UpdatedAt    string
}

// ValueRecord is the value of one variable on one instance.
type ValueRecord struct {
	ProjectElementID string
	VariableID       string
	Value            string
	Revision         int
	UpdatedBy        string
	UpdatedAt        string
}

// RenderedRepository defines the secondary port for the rendered description cache.
type RenderedRepository interface {
	// LoadInputs reads everything a render of the instance depends on, in one
	// consistent read.
	LoadInputs(ctx context.Context, projectElementID string) (*RenderInputsRecord, error)

	// Get retrieves the cached rendered description of an instance.
	Get(ctx context.Context, projectElementID string) (*RenderedRecord, error)

	// Save writes rendered text and clears the stale flag, but only if the
	// instance's input revision is still inputRevision. Returns false when a
	// concurrent write changed the inputs; the row then stays stale.
	Save(ctx context.Context, projectElementID, text string, inputRevision int) (bool, error)

	// ListStale retrieves the IDs of instances whose cache is stale.
	ListStale(ctx context.Context) ([]string, error)
}

// RenderInputsRecord is the source of truth for one render.
type RenderInputsRecord struct {
	ProjectElementID string
	VersionID        string
	TemplateText     string
	Mappings         []*MappingRecord // ordered by position
	Values           map[string]string
	InputRevision    int
}

// RenderedRecord is the cached rendered description of an instance.
type RenderedRecord struct {
	ProjectElementID string
	RenderedText     string
	IsStale          bool
	InputRevision    int
	RenderedAt       string // Empty string means never rendered
}
