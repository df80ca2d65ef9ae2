package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/elemcat/internal/ports/primary"
)

// ProjectAdapter is a thin adapter that translates CLI operations to ProjectService calls.
type ProjectAdapter struct {
	service primary.ProjectService
	out     io.Writer
}

// NewProjectAdapter creates a new ProjectAdapter with the given service.
func NewProjectAdapter(service primary.ProjectService, out io.Writer) *ProjectAdapter {
	return &ProjectAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a project.
func (a *ProjectAdapter) Create(ctx context.Context, req primary.CreateProjectRequest) error {
	resp, err := a.service.CreateProject(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created project %s: %s (%s)\n", resp.ProjectID, resp.Project.Code, resp.Project.Name)
	return nil
}

// List lists projects.
func (a *ProjectAdapter) List(ctx context.Context) error {
	projects, err := a.service.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-14s %-10s %s\n", "ID", "CODE", "STATUS", "NAME")
	fmt.Fprintln(a.out, rule)
	for _, p := range projects {
		fmt.Fprintf(a.out, "%-10s %-14s %-10s %s\n", p.ID, p.Code, p.Status, p.Name)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays a project and its instances with their values.
func (a *ProjectAdapter) Show(ctx context.Context, code string) (*primary.Project, error) {
	project, err := a.service.GetProject(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	instances, err := a.service.GetProjectElements(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project elements: %w", err)
	}

	fmt.Fprintf(a.out, "\nProject:  %s\n", project.ID)
	fmt.Fprintf(a.out, "Code:     %s\n", project.Code)
	fmt.Fprintf(a.out, "Name:     %s\n", project.Name)
	fmt.Fprintf(a.out, "Status:   %s\n", project.Status)
	if project.StartDate != "" || project.EndDate != "" {
		fmt.Fprintf(a.out, "Dates:    %s .. %s\n", orDash(project.StartDate), orDash(project.EndDate))
	}
	if project.Location != "" {
		fmt.Fprintf(a.out, "Location: %s\n", project.Location)
	}

	if len(instances) > 0 {
		fmt.Fprintln(a.out, "\nElements:")
		for _, pe := range instances {
			fmt.Fprintf(a.out, "  %-8s %-14s %s [%s @ %s]\n", pe.ID, pe.InstanceCode, pe.InstanceName, pe.ElementID, pe.VersionID)
			for _, v := range pe.Values {
				fmt.Fprintf(a.out, "      %s = %s (rev %d)\n", orDash(v.VariableName), v.Value, v.Revision)
			}
		}
	}
	fmt.Fprintln(a.out)

	return project, nil
}

// CreateInstance instantiates an element in a project.
func (a *ProjectAdapter) CreateInstance(ctx context.Context, req primary.CreateProjectElementRequest) error {
	resp, err := a.service.CreateProjectElement(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created instance %s: %s pinned to %s\n", resp.ProjectElementID, resp.ProjectElement.InstanceCode, resp.ProjectElement.VersionID)
	return nil
}

// SetValue stores a variable value on an instance.
func (a *ProjectAdapter) SetValue(ctx context.Context, req primary.SetValueRequest) error {
	resp, err := a.service.SetValue(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ %s on %s set (revision %d)\n", req.VariableID, req.ProjectElementID, resp.Revision)
	return nil
}
