package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/elemcat/internal/core/template"
	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/ports/secondary"
)

// TemplateServiceImpl implements the TemplateService interface.
type TemplateServiceImpl struct {
	elementRepo  secondary.ElementRepository
	variableRepo secondary.VariableRepository
	versionRepo  secondary.VersionRepository
	policy       template.Policy
	log          *logging.Logger
}

// NewTemplateService creates a new TemplateService with injected dependencies.
func NewTemplateService(
	elementRepo secondary.ElementRepository,
	variableRepo secondary.VariableRepository,
	versionRepo secondary.VersionRepository,
	policy template.Policy,
	log *logging.Logger,
) *TemplateServiceImpl {
	return &TemplateServiceImpl{
		elementRepo:  elementRepo,
		variableRepo: variableRepo,
		versionRepo:  versionRepo,
		policy:       policy.Normalize(),
		log:          log.With("service", "template"),
	}
}

// ProposeTemplate creates a draft version of an element's description template.
func (s *TemplateServiceImpl) ProposeTemplate(ctx context.Context, req primary.ProposeTemplateRequest) (*primary.ProposeTemplateResponse, error) {
	elementExists, err := s.elementExists(ctx, req.ElementID)
	if err != nil {
		return nil, err
	}

	guard := template.CanPropose(template.ProposeContext{
		ElementID:     req.ElementID,
		ElementExists: elementExists,
		TemplateText:  req.TemplateText,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	record := &secondary.VersionRecord{
		ElementID:    req.ElementID,
		TemplateText: req.TemplateText,
		State:        string(template.StateDraft),
		CreatedBy:    ctxutil.ResolveActor(ctx, req.Author),
	}
	if err := s.versionRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	created, err := s.versionRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created version: %w", err)
	}

	s.log.Info("template proposed", "element_id", req.ElementID, "version_id", created.ID, "version_number", created.VersionNumber)
	return &primary.ProposeTemplateResponse{
		VersionID: created.ID,
		Version:   recordToVersion(created),
	}, nil
}

// BindPlaceholder binds a placeholder of a version to a variable.
func (s *TemplateServiceImpl) BindPlaceholder(ctx context.Context, req primary.BindPlaceholderRequest) (*primary.Mapping, error) {
	version, err := s.findVersion(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}
	variable, err := s.findVariable(ctx, req.VariableID)
	if err != nil {
		return nil, err
	}

	var mappings []*secondary.MappingRecord
	if version != nil {
		mappings, err = s.versionRepo.ListMappings(ctx, req.VersionID)
		if err != nil {
			return nil, err
		}
	}

	name, _ := template.NormalizePlaceholder(req.Placeholder)
	guardCtx := template.BindContext{
		VersionID:      req.VersionID,
		VersionExists:  version != nil,
		Policy:         s.policy,
		VariableID:     req.VariableID,
		VariableExists: variable != nil,
		Placeholder:    req.Placeholder,
		Position:       req.Position,
	}
	if version != nil {
		guardCtx.VersionElementID = version.ElementID
		guardCtx.State = template.State(version.State)
		guardCtx.IsActive = version.IsActive
	}
	if variable != nil {
		guardCtx.VariableElementID = variable.ElementID
	}
	for _, m := range mappings {
		if m.Placeholder == name {
			guardCtx.PlaceholderBound = true
		}
		if m.Position == req.Position {
			guardCtx.PositionTaken = true
		}
	}
	if err := template.CanBindPlaceholder(guardCtx).Error(); err != nil {
		return nil, err
	}

	record := &secondary.MappingRecord{
		VersionID:   req.VersionID,
		VariableID:  req.VariableID,
		Placeholder: name,
		Position:    req.Position,
	}
	if err := s.versionRepo.CreateMapping(ctx, record); err != nil {
		return nil, err
	}

	s.log.Debug("placeholder bound", "version_id", req.VersionID, "placeholder", name, "variable_id", req.VariableID, "position", req.Position)
	return recordToMapping(record), nil
}

// AutoBind binds every unbound placeholder whose identifier equals a variable
// name of the version's element, in order of first appearance.
func (s *TemplateServiceImpl) AutoBind(ctx context.Context, versionID string) ([]*primary.Mapping, error) {
	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}

	variables, err := s.variableRepo.ListByElement(ctx, version.ElementID)
	if err != nil {
		return nil, err
	}
	mappings, err := s.versionRepo.ListMappings(ctx, versionID)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*secondary.VariableRecord, len(variables))
	for _, v := range variables {
		byName[v.Name] = v
	}
	bound := make(map[string]bool, len(mappings))
	nextPosition := 1
	for _, m := range mappings {
		bound[m.Placeholder] = true
		if m.Position >= nextPosition {
			nextPosition = m.Position + 1
		}
	}

	var created []*primary.Mapping
	for _, placeholder := range template.ExtractPlaceholders(version.TemplateText) {
		variable, ok := byName[placeholder]
		if bound[placeholder] || !ok {
			continue
		}

		guard := template.CanBindPlaceholder(template.BindContext{
			VersionID:         versionID,
			VersionExists:     true,
			VersionElementID:  version.ElementID,
			State:             template.State(version.State),
			IsActive:          version.IsActive,
			Policy:            s.policy,
			VariableID:        variable.ID,
			VariableExists:    true,
			VariableElementID: variable.ElementID,
			Placeholder:       placeholder,
			Position:          nextPosition,
		})
		if err := guard.Error(); err != nil {
			return created, err
		}

		record := &secondary.MappingRecord{
			VersionID:   versionID,
			VariableID:  variable.ID,
			Placeholder: placeholder,
			Position:    nextPosition,
		}
		if err := s.versionRepo.CreateMapping(ctx, record); err != nil {
			return created, err
		}
		created = append(created, recordToMapping(record))
		nextPosition++
	}

	s.log.Debug("placeholders auto-bound", "version_id", versionID, "count", len(created))
	return created, nil
}

// Approve advances a version by one approval. The transition into the final
// state activates the version and demotes the element's previous active one.
func (s *TemplateServiceImpl) Approve(ctx context.Context, req primary.ApproveRequest) (*primary.TransitionResponse, error) {
	version, err := s.findVersion(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}

	guardCtx := template.ApproveContext{
		VersionID:     req.VersionID,
		VersionExists: version != nil,
		Policy:        s.policy,
	}
	if version != nil {
		mappings, err := s.versionRepo.ListMappings(ctx, req.VersionID)
		if err != nil {
			return nil, err
		}
		guardCtx.State = template.State(version.State)
		guardCtx.IsActive = version.IsActive
		guardCtx.TemplateText = version.TemplateText
		for _, m := range mappings {
			guardCtx.Bound = append(guardCtx.Bound, m.Placeholder)
		}
	}

	transition, guard := template.CanApprove(guardCtx)
	if err := guard.Error(); err != nil {
		return nil, err
	}

	actor := ctxutil.ResolveActor(ctx, req.Approver)
	err = s.versionRepo.ApplyTransition(ctx, &secondary.TransitionRecord{
		VersionID: version.ID,
		ElementID: version.ElementID,
		FromState: string(transition.From),
		ToState:   string(transition.To),
		Activate:  transition.Activates,
		Approval: &secondary.ApprovalRecord{
			ID:      uuid.NewString(),
			Actor:   actor,
			Comment: req.Comment,
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("version approved",
		"version_id", version.ID,
		"element_id", version.ElementID,
		"from", transition.From,
		"to", transition.To,
		"active", transition.Activates,
		"approver", actor,
	)
	return &primary.TransitionResponse{
		VersionID: version.ID,
		OldState:  string(transition.From),
		NewState:  string(transition.To),
		Active:    transition.Activates,
		Message:   transition.Message,
	}, nil
}

// Reject moves a pending version to the terminal rejected state.
func (s *TemplateServiceImpl) Reject(ctx context.Context, req primary.RejectRequest) (*primary.TransitionResponse, error) {
	version, err := s.findVersion(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}

	guardCtx := template.RejectContext{
		VersionID:     req.VersionID,
		VersionExists: version != nil,
		Policy:        s.policy,
	}
	if version != nil {
		guardCtx.State = template.State(version.State)
		guardCtx.IsActive = version.IsActive
	}

	transition, guard := template.CanReject(guardCtx)
	if err := guard.Error(); err != nil {
		return nil, err
	}

	actor := ctxutil.ResolveActor(ctx, req.Actor)
	err = s.versionRepo.ApplyTransition(ctx, &secondary.TransitionRecord{
		VersionID: version.ID,
		ElementID: version.ElementID,
		FromState: string(transition.From),
		ToState:   string(transition.To),
		Approval: &secondary.ApprovalRecord{
			ID:      uuid.NewString(),
			Actor:   actor,
			Comment: req.Reason,
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("version rejected", "version_id", version.ID, "from", transition.From, "actor", actor)
	return &primary.TransitionResponse{
		VersionID: version.ID,
		OldState:  string(transition.From),
		NewState:  string(transition.To),
		Message:   transition.Message,
	}, nil
}

// GetVersion retrieves a version by ID.
func (s *TemplateServiceImpl) GetVersion(ctx context.Context, versionID string) (*primary.Version, error) {
	record, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	return recordToVersion(record), nil
}

// GetActiveVersion retrieves the active version of an element.
func (s *TemplateServiceImpl) GetActiveVersion(ctx context.Context, elementID string) (*primary.Version, error) {
	record, err := s.versionRepo.GetActive(ctx, elementID)
	if err != nil {
		return nil, err
	}
	return recordToVersion(record), nil
}

// ListVersions lists an element's versions, newest first.
func (s *TemplateServiceImpl) ListVersions(ctx context.Context, elementID string) ([]*primary.Version, error) {
	if _, err := s.elementRepo.GetByID(ctx, elementID); err != nil {
		return nil, err
	}
	records, err := s.versionRepo.ListByElement(ctx, elementID)
	if err != nil {
		return nil, err
	}
	return recordsToVersions(records), nil
}

// ListPendingProposals lists versions still awaiting approval.
func (s *TemplateServiceImpl) ListPendingProposals(ctx context.Context) ([]*primary.Version, error) {
	states := make([]string, 0, s.policy.RequiredApprovals)
	for level := 0; level < s.policy.RequiredApprovals; level++ {
		states = append(states, string(template.StateAt(level)))
	}

	records, err := s.versionRepo.ListByStates(ctx, states)
	if err != nil {
		return nil, err
	}
	return recordsToVersions(records), nil
}

// GetApprovals retrieves the approval log of a version.
func (s *TemplateServiceImpl) GetApprovals(ctx context.Context, versionID string) ([]*primary.Approval, error) {
	if _, err := s.versionRepo.GetByID(ctx, versionID); err != nil {
		return nil, err
	}
	records, err := s.versionRepo.ListApprovals(ctx, versionID)
	if err != nil {
		return nil, err
	}

	approvals := make([]*primary.Approval, len(records))
	for i, r := range records {
		approvals[i] = &primary.Approval{
			ID:        r.ID,
			FromState: r.FromState,
			ToState:   r.ToState,
			Actor:     r.Actor,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		}
	}
	return approvals, nil
}

// GetTemplateMappings retrieves a version's text and bindings by position.
func (s *TemplateServiceImpl) GetTemplateMappings(ctx context.Context, versionID string) (*primary.TemplateMappings, error) {
	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	records, err := s.versionRepo.ListMappings(ctx, versionID)
	if err != nil {
		return nil, err
	}

	result := &primary.TemplateMappings{
		VersionID:    version.ID,
		TemplateText: version.TemplateText,
		Mappings:     make([]*primary.Mapping, len(records)),
	}
	for i, r := range records {
		result.Mappings[i] = recordToMapping(r)
	}
	return result, nil
}

// ValidateTemplate compares a template text against an element's variables.
func (s *TemplateServiceImpl) ValidateTemplate(ctx context.Context, elementID, templateText string) (*primary.TemplateValidation, error) {
	if _, err := s.elementRepo.GetByID(ctx, elementID); err != nil {
		return nil, err
	}
	variables, err := s.variableRepo.ListByElement(ctx, elementID)
	if err != nil {
		return nil, err
	}

	specs := make([]template.VariableSpec, len(variables))
	for i, v := range variables {
		specs[i] = template.VariableSpec{Name: v.Name, Required: v.Required}
	}
	v := template.ValidateTemplate(templateText, specs)

	return &primary.TemplateValidation{
		Valid:           v.Valid(),
		Placeholders:    v.Placeholders,
		Undefined:       v.Undefined,
		MissingRequired: v.MissingRequired,
	}, nil
}

// Helper functions

func (s *TemplateServiceImpl) elementExists(ctx context.Context, elementID string) (bool, error) {
	if _, err := s.elementRepo.GetByID(ctx, elementID); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// findVersion returns nil without error when the version does not exist.
func (s *TemplateServiceImpl) findVersion(ctx context.Context, versionID string) (*secondary.VersionRecord, error) {
	record, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// findVariable returns nil without error when the variable does not exist.
func (s *TemplateServiceImpl) findVariable(ctx context.Context, variableID string) (*secondary.VariableRecord, error) {
	record, err := s.variableRepo.GetByID(ctx, variableID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func recordToVersion(r *secondary.VersionRecord) *primary.Version {
	return &primary.Version{
		ID:            r.ID,
		ElementID:     r.ElementID,
		VersionNumber: r.VersionNumber,
		TemplateText:  r.TemplateText,
		State:         r.State,
		IsActive:      r.IsActive,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func recordsToVersions(records []*secondary.VersionRecord) []*primary.Version {
	versions := make([]*primary.Version, len(records))
	for i, r := range records {
		versions[i] = recordToVersion(r)
	}
	return versions
}

func recordToMapping(r *secondary.MappingRecord) *primary.Mapping {
	return &primary.Mapping{
		VersionID:   r.VersionID,
		VariableID:  r.VariableID,
		Placeholder: r.Placeholder,
		Position:    r.Position,
	}
}

// Ensure TemplateServiceImpl implements the interface
var _ primary.TemplateService = (*TemplateServiceImpl)(nil)
