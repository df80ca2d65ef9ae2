package primary

import "context"

// TemplateService defines the primary port for description template versions
// and their approval workflow.
type TemplateService interface {
	// ProposeTemplate creates a draft version of an element's description template.
	ProposeTemplate(ctx context.Context, req ProposeTemplateRequest) (*ProposeTemplateResponse, error)

	// BindPlaceholder binds a placeholder of a version to a variable.
	BindPlaceholder(ctx context.Context, req BindPlaceholderRequest) (*Mapping, error)

	// AutoBind binds every unbound placeholder whose identifier names a
	// variable of the element. Returns the new bindings.
	AutoBind(ctx context.Context, versionID string) ([]*Mapping, error)

	// Approve advances a version by one approval.
	Approve(ctx context.Context, req ApproveRequest) (*TransitionResponse, error)

	// Reject moves a pending version to the terminal rejected state.
	Reject(ctx context.Context, req RejectRequest) (*TransitionResponse, error)

	// GetVersion retrieves a version by ID.
	GetVersion(ctx context.Context, versionID string) (*Version, error)

	// GetActiveVersion retrieves the active version of an element.
	GetActiveVersion(ctx context.Context, elementID string) (*Version, error)

	// ListVersions lists an element's versions, newest first.
	ListVersions(ctx context.Context, elementID string) ([]*Version, error)

	// ListPendingProposals lists versions still awaiting approval.
	ListPendingProposals(ctx context.Context) ([]*Version, error)

	// GetApprovals retrieves the approval log of a version.
	GetApprovals(ctx context.Context, versionID string) ([]*Approval, error)

	// GetTemplateMappings retrieves a version's text and bindings by position.
	GetTemplateMappings(ctx context.Context, versionID string) (*TemplateMappings, error)

	// ValidateTemplate compares a template text against an element's variables.
	ValidateTemplate(ctx context.Context, elementID, templateText string) (*TemplateValidation, error)
}

// ProposeTemplateRequest contains parameters for proposing a template.
type ProposeTemplateRequest struct {
	ElementID    string
	TemplateText string
	Author       string
}

// ProposeTemplateResponse contains the result of proposing a template.
type ProposeTemplateResponse struct {
	VersionID string
	Version   *Version
}

// BindPlaceholderRequest contains parameters for binding a placeholder.
type BindPlaceholderRequest struct {
	VersionID   string
	VariableID  string
	Placeholder string // "{name}" or "name"
	Position    int
}

// ApproveRequest contains parameters for one approval.
type ApproveRequest struct {
	VersionID string
	Approver  string
	Comment   string
}

// RejectRequest contains parameters for rejecting a version.
type RejectRequest struct {
	VersionID string
	Actor     string
	Reason    string
}

// TransitionResponse contains the outcome of an approval or rejection.
type TransitionResponse struct {
	VersionID string
	OldState  string
	NewState  string
	Active    bool
	Message   string
}

// Version represents a description version at the port boundary.
type Version struct {
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

// Approval is one entry of a version's approval log.
type Approval struct {
	ID        string
	FromState string
	ToState   string
	Actor     string
	Comment   string
	CreatedAt string
}

// Mapping binds a placeholder to a variable at a position.
type Mapping struct {
	VersionID   string
	VariableID  string
	Placeholder string // bare identifier
	Position    int
}

// TemplateMappings is what rendering consumers read for a version.
type TemplateMappings struct {
	VersionID    string
	TemplateText string
	Mappings     []*Mapping
}

// TemplateValidation reports how a text lines up with an element's variables.
type TemplateValidation struct {
	Valid           bool
	Placeholders    []string
	Undefined       []string
	MissingRequired []string
}
