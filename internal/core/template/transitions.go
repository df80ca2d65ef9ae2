// Package template contains the pure business logic for description template
// versions: the approval state machine and placeholder handling.
// This is part of the Functional Core - no I/O, only pure functions.
package template

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the approval state of a description version.
// Approval states are S0..Sn where n is the policy's required approvals.
type State string

const (
	// StateDraft is the state of a freshly proposed version.
	StateDraft State = "S0"
	// StateRejected is the terminal state of a declined proposal.
	StateRejected State = "D"
)

// DefaultRequiredApprovals is the number of approvals a version needs to become active.
const DefaultRequiredApprovals = 3

// MaxRequiredApprovals bounds the policy. The approval log of a version holds
// at most this many entries.
const MaxRequiredApprovals = 3

// StateAt returns the approval state after level approvals.
func StateAt(level int) State {
	return State("S" + strconv.Itoa(level))
}

// Level returns the number of approvals the state represents.
// ok is false for the rejected state or malformed values.
func (s State) Level() (level int, ok bool) {
	if !strings.HasPrefix(string(s), "S") {
		return 0, false
	}
	n, err := strconv.Atoi(string(s)[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Policy is the approval policy applied to every version.
type Policy struct {
	RequiredApprovals int
}

// DefaultPolicy returns the three-approval policy (S0 -> S1 -> S2 -> S3).
func DefaultPolicy() Policy {
	return Policy{RequiredApprovals: DefaultRequiredApprovals}
}

// Normalize returns the policy with a usable approval count: below one falls
// back to the default, above MaxRequiredApprovals is capped.
func (p Policy) Normalize() Policy {
	if p.RequiredApprovals < 1 {
		return DefaultPolicy()
	}
	if p.RequiredApprovals > MaxRequiredApprovals {
		return Policy{RequiredApprovals: MaxRequiredApprovals}
	}
	return p
}

// FinalState returns the activation state for the policy.
func (p Policy) FinalState() State {
	return StateAt(p.Normalize().RequiredApprovals)
}

// IsPending reports whether a version in state s can still be approved or rejected.
func (p Policy) IsPending(s State) bool {
	level, ok := s.Level()
	return ok && level < p.Normalize().RequiredApprovals
}

// Transition is the result of advancing a version by one approval.
type Transition struct {
	From      State
	To        State
	Activates bool // true when To is the policy's final state
	Message   string
}

// Advance computes the next state for one approval.
// It does not evaluate placeholder bindings; see CanApprove.
func (p Policy) Advance(from State) (Transition, error) {
	p = p.Normalize()
	level, ok := from.Level()
	if !ok {
		return Transition{}, fmt.Errorf("cannot approve from state %s", from)
	}
	if level >= p.RequiredApprovals {
		return Transition{}, fmt.Errorf("cannot approve from state %s: already at final state %s", from, p.FinalState())
	}

	to := StateAt(level + 1)
	t := Transition{From: from, To: to, Activates: to == p.FinalState()}
	if t.Activates {
		t.Message = fmt.Sprintf("Approved %s -> %s, version is now active", from, to)
	} else {
		t.Message = fmt.Sprintf("Approved %s -> %s, %d approval(s) remaining", from, to, p.RequiredApprovals-level-1)
	}
	return t, nil
}

// Reject computes the transition into the rejected state.
func (p Policy) Reject(from State) (Transition, error) {
	if !p.IsPending(from) {
		return Transition{}, fmt.Errorf("cannot reject version in state %s", from)
	}
	return Transition{
		From:    from,
		To:      StateRejected,
		Message: fmt.Sprintf("Rejected %s -> %s", from, StateRejected),
	}, nil
}
