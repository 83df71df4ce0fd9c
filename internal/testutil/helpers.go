// Package testutil provides small testify-based builders for the
// sense-plan-act runtime's test suites: validated actions, goals,
// automata and controllers, plus canned sensors, that exercise the
// planner without a concrete domain wired in.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"goap-runtime/internal/goap"
)

// NewAction builds a *goap.Action via goap.NewAction, failing the test
// immediately on a validation error.
func NewAction(t *testing.T, a goap.Action) *goap.Action {
	t.Helper()

	action, err := goap.NewAction(a)
	require.NoError(t, err, "failed to construct action %q", a.Name)
	return action
}

// NewGoal builds a *goap.Goal via goap.NewGoal, failing the test
// immediately on a validation error.
func NewGoal(t *testing.T, g goap.Goal) *goap.Goal {
	t.Helper()

	goalVal, err := goap.NewGoal(g)
	require.NoError(t, err, "failed to construct goal %q", g.Name)
	return goalVal
}

// NewAutomaton builds a *goap.Automaton via goap.NewAutomaton, failing the
// test immediately on a validation error.
func NewAutomaton(t *testing.T, id string, world goap.State, sensors []*goap.Sensor, actions []*goap.Action) *goap.Automaton {
	t.Helper()

	a, err := goap.NewAutomaton(id, world, sensors, actions)
	require.NoError(t, err, "failed to construct automaton %q", id)
	return a
}

// NewController builds a *goap.Controller via goap.NewController, failing
// the test immediately on a validation error.
func NewController(t *testing.T, name string, automaton *goap.Automaton, goals []*goap.Goal) *goap.Controller {
	t.Helper()

	c, err := goap.NewController(name, automaton, goals)
	require.NoError(t, err, "failed to construct controller %q", name)
	return c
}

// ConstantSensor builds a sensor whose Exec always returns value, useful
// for seeding deterministic world state in a test without a live probe.
func ConstantSensor(name, binding string, value goap.Value) *goap.Sensor {
	return &goap.Sensor{
		Name:    name,
		Binding: binding,
		Exec:    func() (goap.Value, error) { return value, nil },
	}
}

// FailingSensor builds a sensor whose Exec always returns err.
func FailingSensor(name, binding string, err error) *goap.Sensor {
	return &goap.Sensor{
		Name:    name,
		Binding: binding,
		Exec:    func() (goap.Value, error) { return goap.NotDefined, err },
	}
}

// NoopAction builds an action whose Execute always succeeds without side
// effects, useful when a test only cares about the plan that was chosen.
func NoopAction(t *testing.T, name string, preconditions, effects goap.State) *goap.Action {
	t.Helper()

	return NewAction(t, goap.Action{
		Name:          name,
		Preconditions: preconditions,
		Effects:       effects,
		Execute:       func(goap.State) error { return nil },
	})
}
