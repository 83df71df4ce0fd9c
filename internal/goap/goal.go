package goap

import "goap-runtime/internal/goaperr"

// Goal is the declaration for a desired partial world state, with a
// priority for arbitration and an optional eligibility precondition
// distinct from DesiredState.
type Goal struct {
	// Name identifies the goal.
	Name string

	// DesiredState is the subset of world state that must hold for the
	// goal to be considered satisfied.
	DesiredState State

	// Preconditions, if non-empty, gate whether this goal is even
	// eligible for arbitration this tick, distinct from DesiredState.
	Preconditions State

	// Priority: larger wins arbitration among eligible goals.
	Priority int
}

// NewGoal validates and constructs a Goal.
func NewGoal(g Goal) (*Goal, error) {
	if g.Name == "" {
		return nil, goaperr.New(goaperr.OperationFailed, "goal must have a non-empty name")
	}
	if len(g.DesiredState) == 0 {
		return nil, goaperr.New(goaperr.OperationFailed, "goal %q must declare a non-empty desired state", g.Name)
	}
	if g.Preconditions == nil {
		g.Preconditions = State{}
	}
	return &g, nil
}

// Eligible reports whether the goal's eligibility preconditions are
// satisfied by the current world state. A goal with no preconditions is
// always eligible.
func (g *Goal) Eligible(world State) bool {
	return world.Satisfies(g.Preconditions)
}

// Satisfied reports whether the current world state already satisfies the
// goal's desired state.
func (g *Goal) Satisfied(world State) bool {
	return world.Satisfies(g.DesiredState)
}
