// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// CatalogService defines the primary port for catalog operations.
// Importers use it to register elements and their variables.
type CatalogService interface {
	// CreateElement creates a new catalog element.
	CreateElement(ctx context.Context, req CreateElementRequest) (*CreateElementResponse, error)

	// GetElement retrieves an element by business code.
	GetElement(ctx context.Context, code string) (*Element, error)

	// GetElementByID retrieves an element by ID.
	GetElementByID(ctx context.Context, elementID string) (*Element, error)

	// ListElements lists elements with optional filters.
	ListElements(ctx context.Context, filters ElementFilters) ([]*Element, error)

	// UpdateElementPrice sets or clears an element's price.
	UpdateElementPrice(ctx context.Context, req UpdateElementPriceRequest) error

	// AddVariable adds a variable (and its options) to an element.
	AddVariable(ctx context.Context, req AddVariableRequest) (*AddVariableResponse, error)

	// AddVariableOption adds one selectable option to a choice variable.
	AddVariableOption(ctx context.Context, req AddVariableOptionRequest) (*AddVariableOptionResponse, error)

	// SetDefaultOption makes an option the variable's only default.
	SetDefaultOption(ctx context.Context, variableID, optionID string) error

	// GetVariables lists an element's variables in display order.
	GetVariables(ctx context.Context, elementID string, includeOptions bool) ([]*Variable, error)

	// ListCategories lists the fixed category enumeration with groups.
	ListCategories(ctx context.Context) []*Category
}

// CreateElementRequest contains parameters for creating an element.
type CreateElementRequest struct {
	Code     string
	Name     string
	Category string   // optional
	Price    *float64 // optional
	Author   string
}

// CreateElementResponse contains the result of creating an element.
type CreateElementResponse struct {
	ElementID string
	Element   *Element
}

// UpdateElementPriceRequest contains parameters for changing a price.
type UpdateElementPriceRequest struct {
	ElementID string
	Price     *float64 // nil clears the price
	Author    string
}

// ElementFilters contains filter options for listing elements.
type ElementFilters struct {
	Category string
}

// Element represents a catalog element at the port boundary.
type Element struct {
	ID        string
	Code      string
	Name      string
	Category  string
	Group     string
	Price     *float64
	CreatedBy string
	CreatedAt string
	UpdatedBy string
	UpdatedAt string
}

// AddVariableRequest contains parameters for adding a variable.
type AddVariableRequest struct {
	ElementID    string
	Name         string
	Type         string // text, numeric, single_choice, multi_choice
	Unit         string
	DefaultValue string
	Required     bool
	DisplayOrder int
	Options      []OptionInput
}

// OptionInput describes an option supplied with a new variable.
type OptionInput struct {
	Value        string
	Label        string
	DisplayOrder int
	IsDefault    bool
}

// AddVariableResponse contains the result of adding a variable.
type AddVariableResponse struct {
	VariableID string
	Variable   *Variable
}

// AddVariableOptionRequest contains parameters for adding an option.
type AddVariableOptionRequest struct {
	VariableID   string
	Value        string
	Label        string
	DisplayOrder int
	IsDefault    bool
}

// AddVariableOptionResponse contains the result of adding an option.
type AddVariableOptionResponse struct {
	OptionID string
	Option   *VariableOption
}

// Variable represents an element variable at the port boundary.
type Variable struct {
	ID           string
	ElementID    string
	Name         string
	Type         string
	Unit         string
	DefaultValue string
	Required     bool
	DisplayOrder int
	Options      []*VariableOption // populated only when requested
}

// VariableOption represents one selectable value of a choice variable.
type VariableOption struct {
	ID           string
	VariableID   string
	Value        string
	Label        string
	DisplayOrder int
	IsDefault    bool
}

// Category is one entry of the category enumeration.
type Category struct {
	Name  string
	Group string
}
