package template

import (
	"fmt"
	"strings"

	"github.com/example/elemcat/internal/core/errkind"
)

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

// ProposeContext provides context for proposal guards.
type ProposeContext struct {
	ElementID     string
	ElementExists bool
	TemplateText  string
}

// CanPropose evaluates whether a template can be proposed for an element.
func CanPropose(ctx ProposeContext) GuardResult {
	if !ctx.ElementExists {
		return GuardResult{Kind: errkind.ErrNotFound, Reason: fmt.Sprintf("element %s not found", ctx.ElementID)}
	}
	if strings.TrimSpace(ctx.TemplateText) == "" {
		return GuardResult{Kind: errkind.ErrInvalidArgument, Reason: "template text is required"}
	}
	return GuardResult{Allowed: true}
}

// ApproveContext provides context for approval guards.
type ApproveContext struct {
	VersionID     string
	VersionExists bool
	State         State
	IsActive      bool
	Policy        Policy
	TemplateText  string
	Bound         []string // placeholders already bound on the version
}

// CanApprove evaluates whether a version can take one more approval and
// returns the transition to apply.
// Rules:
// - Version must exist
// - Version must not be active
// - State must be pending under the policy
// - Activation requires every placeholder in the text to be bound
func CanApprove(ctx ApproveContext) (Transition, GuardResult) {
	if !ctx.VersionExists {
		return Transition{}, GuardResult{Kind: errkind.ErrInvalidTransition, Reason: fmt.Sprintf("version %s not found", ctx.VersionID)}
	}
	if ctx.IsActive {
		return Transition{}, activeVersionResult(ctx.VersionID)
	}

	t, err := ctx.Policy.Advance(ctx.State)
	if err != nil {
		return Transition{}, GuardResult{Kind: errkind.ErrInvalidTransition, Reason: fmt.Sprintf("version %s: %v", ctx.VersionID, err)}
	}

	if t.Activates {
		if missing := Unbound(ctx.TemplateText, ctx.Bound); len(missing) > 0 {
			return Transition{}, GuardResult{
				Kind:   errkind.ErrUnboundPlaceholder,
				Reason: fmt.Sprintf("version %s cannot become active: placeholder(s) %s have no variable binding", ctx.VersionID, strings.Join(missing, ", ")),
			}
		}
	}

	return t, GuardResult{Allowed: true}
}

// RejectContext provides context for rejection guards.
type RejectContext struct {
	VersionID     string
	VersionExists bool
	State         State
	IsActive      bool
	Policy        Policy
}

// CanReject evaluates whether a version can be rejected. Active versions
// cannot be rejected.
func CanReject(ctx RejectContext) (Transition, GuardResult) {
	if !ctx.VersionExists {
		return Transition{}, GuardResult{Kind: errkind.ErrNotFound, Reason: fmt.Sprintf("version %s not found", ctx.VersionID)}
	}
	if ctx.IsActive {
		return Transition{}, activeVersionResult(ctx.VersionID)
	}
	t, err := ctx.Policy.Reject(ctx.State)
	if err != nil {
		return Transition{}, GuardResult{Kind: errkind.ErrInvalidTransition, Reason: fmt.Sprintf("version %s: %v", ctx.VersionID, err)}
	}
	return t, GuardResult{Allowed: true}
}

// BindContext provides context for placeholder binding guards.
type BindContext struct {
	VersionID         string
	VersionExists     bool
	VersionElementID  string
	State             State
	IsActive          bool
	Policy            Policy
	VariableID        string
	VariableExists    bool
	VariableElementID string
	Placeholder       string // raw, as given by the caller
	PlaceholderBound  bool
	Position          int
	PositionTaken     bool
}

// CanBindPlaceholder evaluates whether a placeholder can be bound to a variable
// on a version.
// Rules:
// - Version and variable must exist and belong to the same element
// - Version must still be pending (active and rejected versions are frozen)
// - Placeholder must be a valid identifier, not yet bound on the version
// - Position must be positive and free on the version
func CanBindPlaceholder(ctx BindContext) GuardResult {
	if !ctx.VersionExists {
		return GuardResult{Kind: errkind.ErrNotFound, Reason: fmt.Sprintf("version %s not found", ctx.VersionID)}
	}
	if !ctx.VariableExists {
		return GuardResult{Kind: errkind.ErrNotFound, Reason: fmt.Sprintf("variable %s not found", ctx.VariableID)}
	}
	if ctx.VariableElementID != ctx.VersionElementID {
		return GuardResult{
			Kind:   errkind.ErrForeignMismatch,
			Reason: fmt.Sprintf("variable %s belongs to element %s, version %s to element %s", ctx.VariableID, ctx.VariableElementID, ctx.VersionID, ctx.VersionElementID),
		}
	}
	if ctx.IsActive {
		return activeVersionResult(ctx.VersionID)
	}
	if !ctx.Policy.IsPending(ctx.State) {
		return GuardResult{Kind: errkind.ErrInvalidTransition, Reason: fmt.Sprintf("version %s is %s and can no longer be bound", ctx.VersionID, ctx.State)}
	}
	name, ok := NormalizePlaceholder(ctx.Placeholder)
	if !ok {
		return GuardResult{Kind: errkind.ErrInvalidArgument, Reason: fmt.Sprintf("placeholder %q is not a valid identifier", ctx.Placeholder)}
	}
	if ctx.PlaceholderBound {
		return GuardResult{Kind: errkind.ErrDuplicateKey, Reason: fmt.Sprintf("placeholder %s already bound on version %s", Token(name), ctx.VersionID)}
	}
	if ctx.Position < 1 {
		return GuardResult{Kind: errkind.ErrInvalidArgument, Reason: fmt.Sprintf("position must be positive, got %d", ctx.Position)}
	}
	if ctx.PositionTaken {
		return GuardResult{Kind: errkind.ErrDuplicateKey, Reason: fmt.Sprintf("position %d already used on version %s", ctx.Position, ctx.VersionID)}
	}
	return GuardResult{Allowed: true}
}

// activeVersionResult refuses any change to an active version.
func activeVersionResult(versionID string) GuardResult {
	return GuardResult{Kind: errkind.ErrInvalidTransition, Reason: fmt.Sprintf("version %s is active and frozen", versionID)}
}
