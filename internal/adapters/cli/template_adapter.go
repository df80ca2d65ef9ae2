package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/elemcat/internal/ports/primary"
)

// TemplateAdapter is a thin adapter that translates CLI operations to TemplateService calls.
type TemplateAdapter struct {
	service primary.TemplateService
	out     io.Writer
}

// NewTemplateAdapter creates a new TemplateAdapter with the given service.
func NewTemplateAdapter(service primary.TemplateService, out io.Writer) *TemplateAdapter {
	return &TemplateAdapter{
		service: service,
		out:     out,
	}
}

// Propose creates a draft version of an element's template.
func (a *TemplateAdapter) Propose(ctx context.Context, elementID, text string) error {
	resp, err := a.service.ProposeTemplate(ctx, primary.ProposeTemplateRequest{
		ElementID:    elementID,
		TemplateText: text,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Proposed %s (v%d) for %s in state %s\n",
		resp.VersionID, resp.Version.VersionNumber, elementID, stateBadge(resp.Version.State, false))
	return nil
}

// Bind binds one placeholder. A zero position takes the next free one.
func (a *TemplateAdapter) Bind(ctx context.Context, req primary.BindPlaceholderRequest) error {
	if req.Position == 0 {
		mappings, err := a.service.GetTemplateMappings(ctx, req.VersionID)
		if err != nil {
			return err
		}
		req.Position = 1
		for _, m := range mappings.Mappings {
			if m.Position >= req.Position {
				req.Position = m.Position + 1
			}
		}
	}

	m, err := a.service.BindPlaceholder(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Bound {%s} -> %s at position %d\n", m.Placeholder, m.VariableID, m.Position)
	return nil
}

// AutoBind binds placeholders named after the element's variables.
func (a *TemplateAdapter) AutoBind(ctx context.Context, versionID string) error {
	created, err := a.service.AutoBind(ctx, versionID)
	if err != nil {
		return err
	}

	if len(created) == 0 {
		fmt.Fprintln(a.out, "No placeholders to bind")
		return nil
	}
	for _, m := range created {
		fmt.Fprintf(a.out, "✓ Bound {%s} -> %s at position %d\n", m.Placeholder, m.VariableID, m.Position)
	}
	return nil
}

// Approve records one approval.
func (a *TemplateAdapter) Approve(ctx context.Context, versionID, comment string) error {
	resp, err := a.service.Approve(ctx, primary.ApproveRequest{VersionID: versionID, Comment: comment})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ %s: %s\n", resp.VersionID, resp.Message)
	return nil
}

// Reject moves a pending version to the rejected state.
func (a *TemplateAdapter) Reject(ctx context.Context, versionID, reason string) error {
	resp, err := a.service.Reject(ctx, primary.RejectRequest{VersionID: versionID, Reason: reason})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ %s: %s\n", resp.VersionID, resp.Message)
	return nil
}

// Show displays a version with its bindings and approval log.
func (a *TemplateAdapter) Show(ctx context.Context, versionID string) (*primary.Version, error) {
	version, err := a.service.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	mappings, err := a.service.GetTemplateMappings(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mappings: %w", err)
	}
	approvals, err := a.service.GetApprovals(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approvals: %w", err)
	}

	a.printVersion(version)

	if len(mappings.Mappings) > 0 {
		fmt.Fprintln(a.out, "\nBindings:")
		for _, m := range mappings.Mappings {
			fmt.Fprintf(a.out, "  %2d. {%s} -> %s\n", m.Position, m.Placeholder, m.VariableID)
		}
	}

	if len(approvals) > 0 {
		fmt.Fprintln(a.out, "\nHistory:")
		for _, ap := range approvals {
			line := fmt.Sprintf("  %s -> %s by %s at %s", ap.FromState, ap.ToState, ap.Actor, ap.CreatedAt)
			if ap.Comment != "" {
				line += ": " + ap.Comment
			}
			fmt.Fprintln(a.out, line)
		}
	}
	fmt.Fprintln(a.out)

	return version, nil
}

// Active displays the active version of an element.
func (a *TemplateAdapter) Active(ctx context.Context, elementID string) error {
	version, err := a.service.GetActiveVersion(ctx, elementID)
	if err != nil {
		return err
	}

	a.printVersion(version)
	fmt.Fprintln(a.out)
	return nil
}

// List lists an element's versions, newest first.
func (a *TemplateAdapter) List(ctx context.Context, elementID string) error {
	versions, err := a.service.ListVersions(ctx, elementID)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}
	a.printTable(versions, "No versions found")
	return nil
}

// Pending lists versions still awaiting approval.
func (a *TemplateAdapter) Pending(ctx context.Context) error {
	versions, err := a.service.ListPendingProposals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending proposals: %w", err)
	}
	a.printTable(versions, "No pending proposals")
	return nil
}

// Validate compares a template text with an element's variables.
func (a *TemplateAdapter) Validate(ctx context.Context, elementID, text string) (bool, error) {
	v, err := a.service.ValidateTemplate(ctx, elementID, text)
	if err != nil {
		return false, err
	}

	fmt.Fprintf(a.out, "Placeholders: %s\n", orDash(strings.Join(v.Placeholders, ", ")))
	if len(v.Undefined) > 0 {
		fmt.Fprintln(a.out, warn("Undefined:    %s", strings.Join(v.Undefined, ", ")))
	}
	if len(v.MissingRequired) > 0 {
		fmt.Fprintln(a.out, warn("Missing:      %s", strings.Join(v.MissingRequired, ", ")))
	}
	if v.Valid {
		fmt.Fprintln(a.out, "✓ Template matches the element's variables")
	}
	return v.Valid, nil
}

func (a *TemplateAdapter) printVersion(v *primary.Version) {
	fmt.Fprintf(a.out, "\nVersion:  %s (v%d)\n", v.ID, v.VersionNumber)
	fmt.Fprintf(a.out, "Element:  %s\n", v.ElementID)
	fmt.Fprintf(a.out, "State:    %s\n", stateBadge(v.State, v.IsActive))
	fmt.Fprintf(a.out, "Created:  %s by %s\n", v.CreatedAt, v.CreatedBy)
	fmt.Fprintf(a.out, "Template: %s\n", v.TemplateText)
}

func (a *TemplateAdapter) printTable(versions []*primary.Version, empty string) {
	if len(versions) == 0 {
		fmt.Fprintln(a.out, empty)
		return
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %4s %-10s %s\n", "ID", "ELEMENT", "VER", "STATE", "TEMPLATE")
	fmt.Fprintln(a.out, rule)
	for _, v := range versions {
		text := v.TemplateText
		if len(text) > 48 {
			text = text[:45] + "..."
		}
		fmt.Fprintf(a.out, "%-10s %-10s %4d %-10s %s\n", v.ID, v.ElementID, v.VersionNumber, stateBadge(v.State, v.IsActive), text)
	}
	fmt.Fprintln(a.out)
}
