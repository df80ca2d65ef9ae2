package app

import (
	"context"
	"fmt"

	"github.com/example/elemcat/internal/core/project"
	"github.com/example/elemcat/internal/ctxutil"
	"github.com/example/elemcat/internal/logging"
	"github.com/example/elemcat/internal/ports/primary"
	"github.com/example/elemcat/internal/ports/secondary"
)

// ProjectServiceImpl implements the ProjectService interface.
type ProjectServiceImpl struct {
	projectRepo  secondary.ProjectRepository
	instanceRepo secondary.ProjectElementRepository
	elementRepo  secondary.ElementRepository
	variableRepo secondary.VariableRepository
	versionRepo  secondary.VersionRepository
	log          *logging.Logger
}

// NewProjectService creates a new ProjectService with injected dependencies.
func NewProjectService(
	projectRepo secondary.ProjectRepository,
	instanceRepo secondary.ProjectElementRepository,
	elementRepo secondary.ElementRepository,
	variableRepo secondary.VariableRepository,
	versionRepo secondary.VersionRepository,
	log *logging.Logger,
) *ProjectServiceImpl {
	return &ProjectServiceImpl{
		projectRepo:  projectRepo,
		instanceRepo: instanceRepo,
		elementRepo:  elementRepo,
		variableRepo: variableRepo,
		versionRepo:  versionRepo,
		log:          log.With("service", "project"),
	}
}

// CreateProject creates a new project.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req primary.CreateProjectRequest) (*primary.CreateProjectResponse, error) {
	codeExists, err := s.projectRepo.CodeExists(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	guard := project.CanCreateProject(project.CreateProjectContext{
		Code:       req.Code,
		Name:       req.Name,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CodeExists: codeExists,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = project.DefaultStatus
	}
	record := &secondary.ProjectRecord{
		Code:      req.Code,
		Name:      req.Name,
		Status:    status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Location:  req.Location,
		CreatedBy: ctxutil.ResolveActor(ctx, req.Author),
	}
	if err := s.projectRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	created, err := s.projectRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created project: %w", err)
	}

	s.log.Info("project created", "project_id", created.ID, "code", created.Code)
	return &primary.CreateProjectResponse{
		ProjectID: created.ID,
		Project:   recordToProject(created),
	}, nil
}

// GetProject retrieves a project by business code.
func (s *ProjectServiceImpl) GetProject(ctx context.Context, code string) (*primary.Project, error) {
	record, err := s.projectRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return recordToProject(record), nil
}

// ListProjects lists all projects.
func (s *ProjectServiceImpl) ListProjects(ctx context.Context) ([]*primary.Project, error) {
	records, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*primary.Project, len(records))
	for i, r := range records {
		projects[i] = recordToProject(r)
	}
	return projects, nil
}

// CreateProjectElement instantiates an element in a project, pinned to a
// version. The instance's rendered description starts stale.
func (s *ProjectServiceImpl) CreateProjectElement(ctx context.Context, req primary.CreateProjectElementRequest) (*primary.CreateProjectElementResponse, error) {
	guardCtx := project.CreateInstanceContext{
		ProjectID:    req.ProjectID,
		ElementID:    req.ElementID,
		VersionID:    req.VersionID,
		InstanceCode: req.InstanceCode,
	}

	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err == nil {
		guardCtx.ProjectExists = true
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := s.elementRepo.GetByID(ctx, req.ElementID); err == nil {
		guardCtx.ElementExists = true
	} else if !isNotFound(err) {
		return nil, err
	}
	if version, err := s.versionRepo.GetByID(ctx, req.VersionID); err == nil {
		guardCtx.VersionExists = true
		guardCtx.VersionElementID = version.ElementID
	} else if !isNotFound(err) {
		return nil, err
	}
	if guardCtx.ProjectExists {
		taken, err := s.instanceRepo.InstanceCodeExists(ctx, req.ProjectID, req.InstanceCode)
		if err != nil {
			return nil, err
		}
		guardCtx.InstanceCodeExists = taken
	}

	if err := project.CanCreateInstance(guardCtx).Error(); err != nil {
		return nil, err
	}

	instanceName := req.InstanceName
	if instanceName == "" {
		instanceName = req.InstanceCode
	}
	record := &secondary.ProjectElementRecord{
		ProjectID:    req.ProjectID,
		ElementID:    req.ElementID,
		VersionID:    req.VersionID,
		InstanceCode: req.InstanceCode,
		InstanceName: instanceName,
		Location:     req.Location,
		CreatedBy:    ctxutil.ResolveActor(ctx, req.Author),
	}
	if err := s.instanceRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	created, err := s.GetProjectElement(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created project element: %w", err)
	}

	s.log.Info("project element created",
		"project_element_id", record.ID,
		"project_id", req.ProjectID,
		"version_id", req.VersionID,
		"instance_code", req.InstanceCode,
	)
	return &primary.CreateProjectElementResponse{
		ProjectElementID: record.ID,
		ProjectElement:   created,
	}, nil
}

// GetProjectElement retrieves one instance with its values.
func (s *ProjectServiceImpl) GetProjectElement(ctx context.Context, projectElementID string) (*primary.ProjectElement, error) {
	record, err := s.instanceRepo.GetByID(ctx, projectElementID)
	if err != nil {
		return nil, err
	}

	names, err := s.variableNames(ctx, record.ElementID)
	if err != nil {
		return nil, err
	}
	return s.withValues(ctx, record, names)
}

// GetProjectElements lists a project's instances with their values.
func (s *ProjectServiceImpl) GetProjectElements(ctx context.Context, projectID string) ([]*primary.ProjectElement, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	records, err := s.instanceRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project elements: %w", err)
	}

	namesByElement := make(map[string]map[string]string)
	instances := make([]*primary.ProjectElement, 0, len(records))
	for _, r := range records {
		names, ok := namesByElement[r.ElementID]
		if !ok {
			names, err = s.variableNames(ctx, r.ElementID)
			if err != nil {
				return nil, err
			}
			namesByElement[r.ElementID] = names
		}

		pe, err := s.withValues(ctx, r, names)
		if err != nil {
			return nil, err
		}
		instances = append(instances, pe)
	}
	return instances, nil
}

// SetValue stores the value of a variable on an instance and marks its
// rendered description stale.
func (s *ProjectServiceImpl) SetValue(ctx context.Context, req primary.SetValueRequest) (*primary.SetValueResponse, error) {
	guardCtx := project.SetValueContext{
		ProjectElementID: req.ProjectElementID,
		VariableID:       req.VariableID,
		ExpectedRevision: req.ExpectedRevision,
	}

	if instance, err := s.instanceRepo.GetByID(ctx, req.ProjectElementID); err == nil {
		guardCtx.ProjectElementExists = true
		guardCtx.InstanceElementID = instance.ElementID
	} else if !isNotFound(err) {
		return nil, err
	}
	if variable, err := s.variableRepo.GetByID(ctx, req.VariableID); err == nil {
		guardCtx.VariableExists = true
		guardCtx.VariableElementID = variable.ElementID
	} else if !isNotFound(err) {
		return nil, err
	}
	if guardCtx.ProjectElementExists && guardCtx.VariableExists {
		current, err := s.instanceRepo.GetValue(ctx, req.ProjectElementID, req.VariableID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			guardCtx.CurrentRevision = current.Revision
		}
	}

	if err := project.CanSetValue(guardCtx).Error(); err != nil {
		return nil, err
	}

	record := &secondary.ValueRecord{
		ProjectElementID: req.ProjectElementID,
		VariableID:       req.VariableID,
		Value:            req.Value,
		UpdatedBy:        ctxutil.ResolveActor(ctx, req.Author),
	}
	// The repository re-checks the expected revision inside its transaction.
	if err := s.instanceRepo.UpsertValue(ctx, record, req.ExpectedRevision); err != nil {
		return nil, err
	}

	s.log.Debug("value set", "project_element_id", req.ProjectElementID, "variable_id", req.VariableID, "revision", record.Revision)
	return &primary.SetValueResponse{Revision: record.Revision}, nil
}

// Helper functions

// variableNames maps the variable IDs of an element to their names.
func (s *ProjectServiceImpl) variableNames(ctx context.Context, elementID string) (map[string]string, error) {
	variables, err := s.variableRepo.ListByElement(ctx, elementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	names := make(map[string]string, len(variables))
	for _, v := range variables {
		names[v.ID] = v.Name
	}
	return names, nil
}

func (s *ProjectServiceImpl) withValues(ctx context.Context, r *secondary.ProjectElementRecord, names map[string]string) (*primary.ProjectElement, error) {
	values, err := s.instanceRepo.ListValues(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list values: %w", err)
	}

	pe := &primary.ProjectElement{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		ElementID:    r.ElementID,
		VersionID:    r.VersionID,
		InstanceCode: r.InstanceCode,
		InstanceName: r.InstanceName,
		Location:     r.Location,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		Values:       make([]*primary.Value, len(values)),
	}
	for i, v := range values {
		pe.Values[i] = &primary.Value{
			VariableID:   v.VariableID,
			VariableName: names[v.VariableID],
			Value:        v.Value,
			Revision:     v.Revision,
			UpdatedBy:    v.UpdatedBy,
			UpdatedAt:    v.UpdatedAt,
		}
	}
	return pe, nil
}

func recordToProject(r *secondary.ProjectRecord) *primary.Project {
	return &primary.Project{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Status:    r.Status,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Location:  r.Location,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Ensure ProjectServiceImpl implements the interface
var _ primary.ProjectService = (*ProjectServiceImpl)(nil)
