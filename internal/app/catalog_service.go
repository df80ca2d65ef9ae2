package app

import (
	"context"
	"fmt"

	"github.com/example/elemcat/internal/core/catalog"
	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/ports/secondary"
)

// CatalogServiceImpl implements the CatalogService interface.
type CatalogServiceImpl struct {
	elementRepo  secondary.ElementRepository
	variableRepo secondary.VariableRepository
	log          *logging.Logger
}

// NewCatalogService creates a new CatalogService with injected dependencies.
func NewCatalogService(
	elementRepo secondary.ElementRepository,
	variableRepo secondary.VariableRepository,
	log *logging.Logger,
) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		elementRepo:  elementRepo,
		variableRepo: variableRepo,
		log:          log.With("service", "catalog"),
	}
}

// CreateElement creates a new catalog element.
func (s *CatalogServiceImpl) CreateElement(ctx context.Context, req primary.CreateElementRequest) (*primary.CreateElementResponse, error) {
	codeExists, err := s.elementRepo.CodeExists(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	guard := catalog.CanCreateElement(catalog.CreateElementContext{
		Code:       req.Code,
		Name:       req.Name,
		Category:   req.Category,
		CodeExists: codeExists,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	record := &secondary.ElementRecord{
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		CreatedBy: ctxutil.ResolveActor(ctx, req.Author),
	}
	// The unique index still catches a code taken since the guard ran.
	if err := s.elementRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	created, err := s.elementRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created element: %w", err)
	}

	s.log.Info("element created", "element_id", created.ID, "code", created.Code, "author", created.CreatedBy)
	return &primary.CreateElementResponse{
		ElementID: created.ID,
		Element:   recordToElement(created),
	}, nil
}

// GetElement retrieves an element by business code.
func (s *CatalogServiceImpl) GetElement(ctx context.Context, code string) (*primary.Element, error) {
	record, err := s.elementRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return recordToElement(record), nil
}

// GetElementByID retrieves an element by ID.
func (s *CatalogServiceImpl) GetElementByID(ctx context.Context, elementID string) (*primary.Element, error) {
	record, err := s.elementRepo.GetByID(ctx, elementID)
	if err != nil {
		return nil, err
	}
	return recordToElement(record), nil
}

// ListElements lists elements with optional filters.
func (s *CatalogServiceImpl) ListElements(ctx context.Context, filters primary.ElementFilters) ([]*primary.Element, error) {
	records, err := s.elementRepo.List(ctx, secondary.ElementFilters{Category: filters.Category})
	if err != nil {
		return nil, fmt.Errorf("failed to list elements: %w", err)
	}

	elements := make([]*primary.Element, len(records))
	for i, r := range records {
		elements[i] = recordToElement(r)
	}
	return elements, nil
}

// UpdateElementPrice sets or clears an element's price.
func (s *CatalogServiceImpl) UpdateElementPrice(ctx context.Context, req primary.UpdateElementPriceRequest) error {
	if err := s.elementRepo.UpdatePrice(ctx, req.ElementID, req.Price, ctxutil.ResolveActor(ctx, req.Author)); err != nil {
		return err
	}
	s.log.Debug("element price updated", "element_id", req.ElementID)
	return nil
}

// AddVariable adds a variable and its options to an element atomically.
func (s *CatalogServiceImpl) AddVariable(ctx context.Context, req primary.AddVariableRequest) (*primary.AddVariableResponse, error) {
	elementExists := true
	if _, err := s.elementRepo.GetByID(ctx, req.ElementID); err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		elementExists = false
	}

	nameExists := false
	if elementExists {
		var err error
		nameExists, err = s.variableRepo.NameExists(ctx, req.ElementID, req.Name)
		if err != nil {
			return nil, err
		}
	}

	specs := make([]catalog.OptionSpec, len(req.Options))
	for i, o := range req.Options {
		specs[i] = catalog.OptionSpec{Value: o.Value, IsDefault: o.IsDefault}
	}

	guard := catalog.CanAddVariable(catalog.AddVariableContext{
		ElementID:     req.ElementID,
		ElementExists: elementExists,
		Name:          req.Name,
		NameExists:    nameExists,
		Type:          catalog.VariableType(req.Type),
		Options:       specs,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	record := &secondary.VariableRecord{
		ElementID:    req.ElementID,
		Name:         req.Name,
		Type:         req.Type,
		Unit:         req.Unit,
		DefaultValue: req.DefaultValue,
		Required:     req.Required,
		DisplayOrder: req.DisplayOrder,
	}
	options := make([]*secondary.OptionRecord, len(req.Options))
	for i, o := range req.Options {
		options[i] = &secondary.OptionRecord{
			Value:        o.Value,
			Label:        o.Label,
			DisplayOrder: o.DisplayOrder,
			IsDefault:    o.IsDefault,
		}
	}

	if err := s.variableRepo.CreateWithOptions(ctx, record, options); err != nil {
		return nil, err
	}

	variable := recordToVariable(record)
	variable.Options = make([]*primary.VariableOption, len(options))
	for i, o := range options {
		variable.Options[i] = recordToOption(o)
	}

	s.log.Info("variable added", "element_id", req.ElementID, "variable_id", record.ID, "name", record.Name, "options", len(options))
	return &primary.AddVariableResponse{
		VariableID: record.ID,
		Variable:   variable,
	}, nil
}

// AddVariableOption adds one option to a choice variable.
func (s *CatalogServiceImpl) AddVariableOption(ctx context.Context, req primary.AddVariableOptionRequest) (*primary.AddVariableOptionResponse, error) {
	variable, err := s.variableRepo.GetByID(ctx, req.VariableID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	guardCtx := catalog.AddOptionContext{
		VariableID:     req.VariableID,
		VariableExists: variable != nil,
		Value:          req.Value,
	}
	if variable != nil {
		guardCtx.VariableType = catalog.VariableType(variable.Type)
		guardCtx.ValueExists, err = s.variableRepo.OptionValueExists(ctx, req.VariableID, req.Value)
		if err != nil {
			return nil, err
		}
	}
	if err := catalog.CanAddOption(guardCtx).Error(); err != nil {
		return nil, err
	}

	record := &secondary.OptionRecord{
		VariableID:   req.VariableID,
		Value:        req.Value,
		Label:        req.Label,
		DisplayOrder: req.DisplayOrder,
		IsDefault:    req.IsDefault,
	}
	if err := s.variableRepo.AddOption(ctx, record); err != nil {
		return nil, err
	}

	s.log.Debug("option added", "variable_id", req.VariableID, "option_id", record.ID, "default", record.IsDefault)
	return &primary.AddVariableOptionResponse{
		OptionID: record.ID,
		Option:   recordToOption(record),
	}, nil
}

// SetDefaultOption makes an option the variable's only default.
func (s *CatalogServiceImpl) SetDefaultOption(ctx context.Context, variableID, optionID string) error {
	if _, err := s.variableRepo.GetByID(ctx, variableID); err != nil {
		return err
	}
	return s.variableRepo.SetDefaultOption(ctx, variableID, optionID)
}

// GetVariables lists an element's variables in display order.
func (s *CatalogServiceImpl) GetVariables(ctx context.Context, elementID string, includeOptions bool) ([]*primary.Variable, error) {
	if _, err := s.elementRepo.GetByID(ctx, elementID); err != nil {
		return nil, err
	}

	records, err := s.variableRepo.ListByElement(ctx, elementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}

	variables := make([]*primary.Variable, len(records))
	for i, r := range records {
		variables[i] = recordToVariable(r)
		if !includeOptions {
			continue
		}
		options, err := s.variableRepo.ListOptions(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list options: %w", err)
		}
		for _, o := range options {
			variables[i].Options = append(variables[i].Options, recordToOption(o))
		}
	}
	return variables, nil
}

// ListCategories lists the fixed category enumeration with groups.
func (s *CatalogServiceImpl) ListCategories(ctx context.Context) []*primary.Category {
	categories := make([]*primary.Category, len(catalog.Categories))
	for i, c := range catalog.Categories {
		categories[i] = &primary.Category{Name: c, Group: catalog.GroupOf(c)}
	}
	return categories
}

// Helper functions

func recordToElement(r *secondary.ElementRecord) *primary.Element {
	return &primary.Element{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Category:  r.Category,
		Group:     catalog.GroupOf(r.Category),
		Price:     r.Price,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedBy: r.UpdatedBy,
		UpdatedAt: r.UpdatedAt,
	}
}

func recordToVariable(r *secondary.VariableRecord) *primary.Variable {
	return &primary.Variable{
		ID:           r.ID,
		ElementID:    r.ElementID,
		Name:         r.Name,
		Type:         r.Type,
		Unit:         r.Unit,
		DefaultValue: r.DefaultValue,
		Required:     r.Required,
		DisplayOrder: r.DisplayOrder,
	}
}

func recordToOption(r *secondary.OptionRecord) *primary.VariableOption {
	return &primary.VariableOption{
		ID:           r.ID,
		VariableID:   r.VariableID,
		Value:        r.Value,
		Label:        r.Label,
		DisplayOrder: r.DisplayOrder,
		IsDefault:    r.IsDefault,
	}
}

// Ensure CatalogServiceImpl implements the interface
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
