package goap

import (
	"fmt"
	"sort"

	"goap-runtime/internal/goaperr"
)

// Action is the declaration for a templated, reusable capability: what it
// needs (Preconditions), what it produces (Effects), and how to run it.
// Instances are immutable once constructed and live for the process.
type Action struct {
	// Name uniquely identifies the action within an agent's action set.
	Name string

	// Preconditions maps a key to either a literal Value or an
	// EffectReference naming one of this same action's Effects keys.
	// A precondition value must never be the Service sentinel.
	Preconditions State

	// Effects maps a key to either a literal Value or the Service
	// sentinel, meaning "the downstream goal decides."
	Effects State

	// Cost is the default, static action cost; used unless GetCost is set.
	// A nil Cost defaults to 1.0 at construction; an explicit free action
	// uses CostPtr(0) to distinguish "cost zero" from "cost unset".
	Cost *float64

	// Precedence breaks ties between neighbours sharing the same f-score
	// during search: higher expands first.
	Precedence float64

	// ApplyEffectsOnExit controls whether the automaton writes literal
	// effects into world state after Execute returns. When false, the
	// action's own Execute is solely responsible for any world-state
	// mutation.
	ApplyEffectsOnExit bool

	// CheckProceduralPrecondition is an optional code-level veto,
	// consulted both while planning (isPlanning=true, on the neighbour's
	// resolved services) and immediately before execution
	// (isPlanning=false). A nil func always passes.
	CheckProceduralPrecondition func(services State, isPlanning bool) bool

	// GetCost optionally computes a dynamic cost from resolved services.
	// A nil func uses Cost.
	GetCost func(services State) float64

	// Execute runs the effector. Errors propagate as ActionError.
	Execute func(services State) error

	// serviceNames is derived from Effects at construction time; see
	// NewAction.
	serviceNames []string
}

// NewAction validates and constructs an Action. It is the only supported
// way to build one: service_names is derived here, not author-provided,
// and the precondition/effect invariants are enforced before the action
// can ever reach a planner.
func NewAction(a Action) (*Action, error) {
	if a.Name == "" {
		return nil, goaperr.New(goaperr.ActionError, "action must have a non-empty name")
	}
	if a.Preconditions == nil {
		a.Preconditions = State{}
	}
	if a.Effects == nil {
		a.Effects = State{}
	}
	if a.Cost == nil {
		a.Cost = CostPtr(1.0)
	}
	if a.Execute == nil {
		return nil, goaperr.New(goaperr.ActionError, "action %q must declare Execute", a.Name)
	}

	var serviceNames []string
	for k, v := range a.Effects {
		if IsService(v) {
			serviceNames = append(serviceNames, k)
		}
	}
	sort.Strings(serviceNames)
	a.serviceNames = serviceNames

	for name, v := range a.Preconditions {
		if IsService(v) {
			return nil, goaperr.New(goaperr.ActionError,
				"action %q: precondition %q cannot be the service sentinel", a.Name, name)
		}
		if ref, ok := IsReference(v); ok {
			if _, hasEffect := a.Effects[ref.Name]; !hasEffect {
				return nil, goaperr.New(goaperr.ActionError,
					"action %q: precondition %q references unknown effect %q", a.Name, name, ref.Name)
			}
		}
	}

	return &a, nil
}

// ServiceNames returns the derived, sorted set of effect keys whose value
// is the Service sentinel.
func (a *Action) ServiceNames() []string {
	return a.serviceNames
}

// checkProcedural consults CheckProceduralPrecondition, defaulting to true.
func (a *Action) checkProcedural(services State, isPlanning bool) bool {
	if a.CheckProceduralPrecondition == nil {
		return true
	}
	return a.CheckProceduralPrecondition(services, isPlanning)
}

// cost consults GetCost, defaulting to the static Cost.
func (a *Action) cost(services State) float64 {
	if a.GetCost == nil {
		return *a.Cost
	}
	return a.GetCost(services)
}

// CostPtr returns a pointer to f, for populating Action.Cost in a struct
// literal (including the zero-cost case, which a bare float64 field could
// not distinguish from "unset").
func CostPtr(f float64) *float64 {
	return &f
}

func (a *Action) String() string {
	return fmt.Sprintf("Action(%s)", a.Name)
}
