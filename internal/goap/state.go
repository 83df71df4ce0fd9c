// Package goap implements a regressive A* planner and a sense-plan-act
// automaton for goal-oriented action planning agents.
package goap

import (
	"fmt"
	"sort"
)

// Value is an atomic world-state value. Implementations may use any
// comparable Go type (bool, string, int, a custom comparable struct); the
// planner only ever compares values with ==.
type Value interface{}

// notDefined is the sentinel value returned when a key is absent from the
// world state. It never compares equal to any legitimate Value because it
// is a distinct, unexported type.
type notDefined struct{}

func (notDefined) String() string { return "NOT_DEFINED" }

// NotDefined is the sentinel read-result for an absent world-state key.
var NotDefined Value = notDefined{}

// serviceSentinel marks an effect whose concrete value is decided by the
// downstream goal at plan time, rather than being a literal.
type serviceSentinel struct{}

func (serviceSentinel) String() string { return "..." }

// Service is the effect sentinel: "the downstream goal decides this value."
// It must never appear as a precondition value, and never as a value
// actually stored in world state.
var Service Value = serviceSentinel{}

// State is a mapping from fact keys to atomic values. It backs world
// state, node current/goal state, and resolved service bindings alike.
type State map[string]Value

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get returns the value for key, or NotDefined if absent.
func (s State) Get(key string) Value {
	if v, ok := s[key]; ok {
		return v
	}
	return NotDefined
}

// Satisfies reports whether every key in goal matches s's value for that
// key (subset semantics: extra keys in s are irrelevant).
func (s State) Satisfies(goal State) bool {
	for k, v := range goal {
		if s.Get(k) != v {
			return false
		}
	}
	return true
}

// UnsatisfiedKeys returns the goal keys whose demanded value does not
// match the current state, sorted so that repeated planning calls over
// the same inputs are deterministic.
func (s State) UnsatisfiedKeys(goal State) []string {
	var out []string
	for k, v := range goal {
		if s.Get(k) != v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// EffectReference is a precondition value meaning "bind to the runtime
// value of the named effect on this same action." Construct with
// Reference.
type EffectReference struct {
	Name string
}

// Reference builds an EffectReference for the named effect.
func Reference(name string) EffectReference {
	return EffectReference{Name: name}
}

func (r EffectReference) String() string { return fmt.Sprintf("ref(%s)", r.Name) }

// IsService reports whether v is the service sentinel.
func IsService(v Value) bool {
	_, ok := v.(serviceSentinel)
	return ok
}

// IsReference reports whether v is an EffectReference, returning it if so.
func IsReference(v Value) (EffectReference, bool) {
	r, ok := v.(EffectReference)
	return r, ok
}
