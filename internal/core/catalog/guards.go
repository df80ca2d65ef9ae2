package catalog

import (
	"fmt"
	"strings"

	"github.com/example/elemcat/internal/core/errkind"
)

// VariableType is the type of an element variable.
type VariableType string

const (
	TypeText         VariableType = "text"
	TypeNumeric      VariableType = "numeric"
	TypeSingleChoice VariableType = "single_choice"
	TypeMultiChoice  VariableType = "multi_choice"
)

// IsChoice reports whether the type carries selectable options.
func (t VariableType) IsChoice() bool {
	return t == TypeSingleChoice || t == TypeMultiChoice
}

// Valid reports whether t is one of the known variable types.
func (t VariableType) Valid() bool {
	switch t {
	case TypeText, TypeNumeric, TypeSingleChoice, TypeMultiChoice:
		return true
	}
	return false
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    error // errkind sentinel (populated when not allowed)
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
	return GuardResult{Allowed: false, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// CreateElementContext provides context for element creation guards.
type CreateElementContext struct {
	Code       string
	Name       string
	Category   string // empty means no category
	CodeExists bool
}

// CanCreateElement evaluates whether an element can be created.
// Rules:
// - Code and name are required
// - Code must be unique
// - Category, when given, must be in the enumeration
func CanCreateElement(ctx CreateElementContext) GuardResult {
	if strings.TrimSpace(ctx.Code) == "" {
		return deny(errkind.ErrInvalidArgument, "element code is required")
	}
	if strings.TrimSpace(ctx.Name) == "" {
		return deny(errkind.ErrInvalidArgument, "element name is required")
	}
	if ctx.CodeExists {
		return deny(errkind.ErrDuplicateKey, "element code %s already exists", ctx.Code)
	}
	if ctx.Category != "" && !IsValidCategory(ctx.Category) {
		return deny(errkind.ErrInvalidCategory, "category %q is not a valid construction category", ctx.Category)
	}
	return GuardResult{Allowed: true}
}

// OptionSpec is the minimal option info needed by guards.
type OptionSpec struct {
	Value     string
	IsDefault bool
}

// AddVariableContext provides context for variable creation guards.
type AddVariableContext struct {
	ElementID     string
	ElementExists bool
	Name          string
	NameExists    bool
	Type          VariableType
	Options       []OptionSpec
}

// CanAddVariable evaluates whether a variable can be added to an element.
// Rules:
// - Element must exist
// - Name must be non-empty and unique within the element
// - Type must be known
// - Options only on choice types, values unique, at most one default
func CanAddVariable(ctx AddVariableContext) GuardResult {
	if !ctx.ElementExists {
		return deny(errkind.ErrNotFound, "element %s not found", ctx.ElementID)
	}
	if strings.TrimSpace(ctx.Name) == "" {
		return deny(errkind.ErrInvalidArgument, "variable name is required")
	}
	if ctx.NameExists {
		return deny(errkind.ErrDuplicateKey, "variable %s already exists on element %s", ctx.Name, ctx.ElementID)
	}
	if !ctx.Type.Valid() {
		return deny(errkind.ErrInvalidArgument, "unknown variable type %q", ctx.Type)
	}
	if len(ctx.Options) > 0 && !ctx.Type.IsChoice() {
		return deny(errkind.ErrInvalidArgument, "variable %s of type %s cannot have options", ctx.Name, ctx.Type)
	}

	seen := make(map[string]bool, len(ctx.Options))
	defaults := 0
	for _, o := range ctx.Options {
		if seen[o.Value] {
			return deny(errkind.ErrDuplicateKey, "option %q listed twice for variable %s", o.Value, ctx.Name)
		}
		seen[o.Value] = true
		if o.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return deny(errkind.ErrInvalidArgument, "variable %s has %d default options, at most one allowed", ctx.Name, defaults)
	}

	return GuardResult{Allowed: true}
}

// AddOptionContext provides context for option creation guards.
type AddOptionContext struct {
	VariableID     string
	VariableExists bool
	VariableType   VariableType
	Value          string
	ValueExists    bool
}

// CanAddOption evaluates whether an option can be added to a variable.
// Rules:
// - Variable must exist and be a choice type
// - Value must be unique within the variable
func CanAddOption(ctx AddOptionContext) GuardResult {
	if !ctx.VariableExists {
		return deny(errkind.ErrNotFound, "variable %s not found", ctx.VariableID)
	}
	if !ctx.VariableType.IsChoice() {
		return deny(errkind.ErrInvalidArgument, "variable %s of type %s cannot have options", ctx.VariableID, ctx.VariableType)
	}
	if ctx.ValueExists {
		return deny(errkind.ErrDuplicateKey, "option %q already exists on variable %s", ctx.Value, ctx.VariableID)
	}
	return GuardResult{Allowed: true}
}
