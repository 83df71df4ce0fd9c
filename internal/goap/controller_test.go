package goap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAction(t *testing.T, a Action) *Action {
	t.Helper()
	action, err := NewAction(a)
	require.NoError(t, err, "failed to construct action %q", a.Name)
	return action
}

func newTestGoal(t *testing.T, g Goal) *Goal {
	t.Helper()
	goalVal, err := NewGoal(g)
	require.NoError(t, err, "failed to construct goal %q", g.Name)
	return goalVal
}

func newTestAutomaton(t *testing.T, id string, world State, sensors []*Sensor, actions []*Action) *Automaton {
	t.Helper()
	a, err := NewAutomaton(id, world, sensors, actions)
	require.NoError(t, err, "failed to construct automaton %q", id)
	return a
}

func newTestController(t *testing.T, name string, automaton *Automaton, goals []*Goal) *Controller {
	t.Helper()
	c, err := NewController(name, automaton, goals)
	require.NoError(t, err, "failed to construct controller %q", name)
	return c
}

// TestController_PriorityPreemption: a low-priority goal is active until
// a sensor makes a higher-priority goal eligible, at which point
// arbitration switches goals and discards the in-flight plan.
func TestController_PriorityPreemption(t *testing.T) {
	weather := "clear"
	weatherSensor := &Sensor{
		Name:    "weather_sensor",
		Binding: "weather",
		Exec:    func() (Value, error) { return weather, nil },
	}

	buildStep := newTestAction(t, Action{
		Name:               "LayBrick",
		Effects:            State{"token_built": true},
		ApplyEffectsOnExit: true,
		Execute:            func(State) error { return nil },
	})
	shelterStep := newTestAction(t, Action{
		Name:               "DuckIndoors",
		Effects:            State{"sheltered": true},
		ApplyEffectsOnExit: true,
		Execute:            func(State) error { return nil },
	})

	world := State{"token_built": false, "sheltered": false}
	a := newTestAutomaton(t, "villager", world, []*Sensor{weatherSensor}, []*Action{buildStep, shelterStep})

	buildToken := newTestGoal(t, Goal{Name: "BuildToken", DesiredState: State{"token_built": true}, Priority: 1})
	takeShelter := newTestGoal(t, Goal{
		Name:          "TakeShelter",
		DesiredState:  State{"sheltered": true},
		Preconditions: State{"weather": "storm"},
		Priority:      200,
	})

	controller := newTestController(t, "villager", a, []*Goal{buildToken, takeShelter})

	require.NoError(t, controller.Step(StepDefault))
	assert.Equal(t, "BuildToken", a.Goal().Name)

	weather = "storm"

	// Arbitration runs before sensing within a tick, so the storm is
	// sensed on the next tick and acted on by the arbitration after it.
	require.NoError(t, controller.Step(StepDefault))
	require.NoError(t, controller.Step(StepDefault))
	assert.Equal(t, "TakeShelter", a.Goal().Name)
}

func TestController_Arbitrate_TieBrokenByDeclarationOrder(t *testing.T) {
	a := newTestAutomaton(t, "agent", State{}, nil, nil)

	first := newTestGoal(t, Goal{Name: "first", DesiredState: State{"x": true}, Priority: 5})
	second := newTestGoal(t, Goal{Name: "second", DesiredState: State{"y": true}, Priority: 5})

	controller := newTestController(t, "agent", a, []*Goal{first, second})

	assert.Equal(t, "first", controller.arbitrate().Name)
}

func TestController_Arbitrate_SkipsIneligibleGoals(t *testing.T) {
	a := newTestAutomaton(t, "agent", State{"threatened": false}, nil, nil)

	flee := newTestGoal(t, Goal{
		Name: "flee", DesiredState: State{"safe": true},
		Preconditions: State{"threatened": true}, Priority: 100,
	})
	idle := newTestGoal(t, Goal{Name: "idle", DesiredState: State{"busy": false}, Priority: 1})

	controller := newTestController(t, "agent", a, []*Goal{flee, idle})

	assert.Equal(t, "idle", controller.arbitrate().Name)
}

func TestNewController_RejectsDuplicateGoalNames(t *testing.T) {
	a := newTestAutomaton(t, "agent", State{}, nil, nil)

	g := newTestGoal(t, Goal{Name: "dup", DesiredState: State{"x": true}, Priority: 1})

	_, err := NewController("agent", a, []*Goal{g, g})
	require.Error(t, err)
}

func TestController_Step_StepOnce_ExecutesExactlyOneQueuedStep(t *testing.T) {
	first := newTestAction(t, Action{
		Name:               "First",
		Effects:            State{"step_one": true},
		ApplyEffectsOnExit: true,
		Execute:            func(State) error { return nil },
	})
	second := newTestAction(t, Action{
		Name:               "Second",
		Preconditions:      State{"step_one": true},
		Effects:            State{"step_two": true},
		ApplyEffectsOnExit: true,
		Execute:            func(State) error { return nil },
	})

	world := State{"step_one": false, "step_two": false}
	a := newTestAutomaton(t, "stepper", world, nil, []*Action{first, second})

	goal := newTestGoal(t, Goal{Name: "finish", DesiredState: State{"step_two": true}, Priority: 1})

	controller := newTestController(t, "stepper", a, []*Goal{goal})

	// Build the plan directly, bypassing StepDefault's own Act() call, so
	// StepOnce's single-step semantics can be observed in isolation.
	a.InputGoal(goal)
	require.NoError(t, a.Sense())
	require.NoError(t, a.Plan())
	require.Len(t, a.CurrentPlan(), 2)
	assert.Equal(t, 0, a.StepIndex())

	require.NoError(t, controller.Step(StepOnce))
	assert.Equal(t, 1, a.StepIndex())
	assert.False(t, a.PlanExhausted())

	require.NoError(t, controller.Step(StepOnce))
	assert.True(t, a.PlanExhausted())
}

func TestController_StartStop(t *testing.T) {
	a := newTestAutomaton(t, "idle_agent", State{}, nil, nil)
	controller := newTestController(t, "idle_agent", a, nil)

	done := make(chan struct{})
	go func() {
		controller.Start(time.Millisecond)
		close(done)
	}()

	controller.Stop()
	<-done
}
