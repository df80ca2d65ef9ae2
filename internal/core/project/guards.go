// Package project contains the pure business logic for project operations.
// Guards are pure functions that evaluate preconditions without side effects.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/elemcat/internal/core/errkind"
)

// DefaultStatus is the status of a project created without one.
const DefaultStatus = "active"

// DateLayout is the format of project start and end dates.
const DateLayout = "2006-01-02"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    error
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", r.Kind, r.Reason)
}

func deny(kind error, format string, args ...any) GuardResult {
	return GuardResult{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// CreateProjectContext provides context for project creation guards.
type CreateProjectContext struct {
	Code       string
	Name       string
	StartDate  string
	EndDate    string
	CodeExists bool
}

// CanCreateProject evaluates whether a project can be created.
// Dates are optional; when both are given the end may not precede the start.
func CanCreateProject(ctx CreateProjectContext) GuardResult {
	if strings.TrimSpace(ctx.Code) == "" {
		return deny(errkind.ErrInvalidArgument, "project code is required")
	}
	if strings.TrimSpace(ctx.Name) == "" {
		return deny(errkind.ErrInvalidArgument, "project name is required")
	}
	var start, end time.Time
	for _, d := range []struct {
		field, value string
		into         *time.Time
	}{{"start date", ctx.StartDate, &start}, {"end date", ctx.EndDate, &end}} {
		if d.value == "" {
			continue
		}
		t, err := time.Parse(DateLayout, d.value)
		if err != nil {
			return deny(errkind.ErrInvalidArgument, "%s %q is not a YYYY-MM-DD date", d.field, d.value)
		}
		*d.into = t
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return deny(errkind.ErrInvalidArgument, "end date %s is before start date %s", ctx.EndDate, ctx.StartDate)
	}
	if ctx.CodeExists {
		return deny(errkind.ErrDuplicateKey, "project code %s already exists", ctx.Code)
	}
	return GuardResult{Allowed: true}
}

// CreateInstanceContext provides context for project element creation guards.
type CreateInstanceContext struct {
	ProjectID          string
	ProjectExists      bool
	ElementID          string
	ElementExists      bool
	VersionID          string
	VersionExists      bool
	VersionElementID   string
	InstanceCode       string
	InstanceCodeExists bool
}

// CanCreateInstance evaluates whether an element can be instantiated in a project.
// Rules:
// - Project, element and version must exist
// - The version must be a version of the element
// - Instance code must be unique within the project
func CanCreateInstance(ctx CreateInstanceContext) GuardResult {
	if !ctx.ProjectExists {
		return deny(errkind.ErrNotFound, "project %s not found", ctx.ProjectID)
	}
	if !ctx.ElementExists {
		return deny(errkind.ErrNotFound, "element %s not found", ctx.ElementID)
	}
	if !ctx.VersionExists {
		return deny(errkind.ErrNotFound, "version %s not found", ctx.VersionID)
	}
	if ctx.VersionElementID != ctx.ElementID {
		return deny(errkind.ErrForeignMismatch, "version %s belongs to element %s, not %s", ctx.VersionID, ctx.VersionElementID, ctx.ElementID)
	}
	if strings.TrimSpace(ctx.InstanceCode) == "" {
		return deny(errkind.ErrInvalidArgument, "instance code is required")
	}
	if ctx.InstanceCodeExists {
		return deny(errkind.ErrDuplicateKey, "instance code %s already used in project %s", ctx.InstanceCode, ctx.ProjectID)
	}
	return GuardResult{Allowed: true}
}

// SetValueContext provides context for value assignment guards.
type SetValueContext struct {
	ProjectElementID     string
	ProjectElementExists bool
	InstanceElementID    string
	VariableID           string
	VariableExists       bool
	VariableElementID    string
	ExpectedRevision     int // 0 means unconditional
	CurrentRevision      int // 0 when no value is stored yet
}

// CanSetValue evaluates whether a value can be stored for an instance variable.
// Rules:
// - Instance and variable must exist
// - Variable must belong to the instance's element
// - An expected revision, when given, must match the stored one
func CanSetValue(ctx SetValueContext) GuardResult {
	if !ctx.ProjectElementExists {
		return deny(errkind.ErrNotFound, "project element %s not found", ctx.ProjectElementID)
	}
	if !ctx.VariableExists {
		return deny(errkind.ErrNotFound, "variable %s not found", ctx.VariableID)
	}
	if ctx.VariableElementID != ctx.InstanceElementID {
		return deny(errkind.ErrForeignMismatch, "variable %s belongs to element %s, instance %s is element %s",
			ctx.VariableID, ctx.VariableElementID, ctx.ProjectElementID, ctx.InstanceElementID)
	}
	if ctx.ExpectedRevision > 0 && ctx.ExpectedRevision != ctx.CurrentRevision {
		return deny(errkind.ErrConflict, "value of %s on %s is at revision %d, expected %d",
			ctx.VariableID, ctx.ProjectElementID, ctx.CurrentRevision, ctx.ExpectedRevision)
	}
	return GuardResult{Allowed: true}
}
