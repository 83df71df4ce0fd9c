// Package e2e exercises the full sense->plan->act cycle through the
// public goap API end to end, driving a whole agent across ticks rather
// than one internal unit.
package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goap-runtime/internal/goap"
	"goap-runtime/internal/testutil"
)

// buildAgent constructs a pared-down two-goal, weather-preemption agent
// (the service chain cmd/agent-demo adds is covered by that package's
// own tests), parameterized by a pointer the test can flip between
// ticks to simulate the weather sensor changing its mind.
func buildAgent(t *testing.T, weather *string) (*goap.Automaton, *goap.Controller) {
	t.Helper()

	weatherSensor := &goap.Sensor{
		Name:    "WeatherSensor",
		Binding: "weather",
		Exec:    func() (goap.Value, error) { return *weather, nil },
	}

	gatherWood := testutil.NewAction(t, goap.Action{
		Name:               "GatherWood",
		Effects:            goap.State{"has_wood": true},
		ApplyEffectsOnExit: true,
		Execute:            func(goap.State) error { return nil },
	})
	gatherMaterials := testutil.NewAction(t, goap.Action{
		Name:               "GatherMaterials",
		Preconditions:      goap.State{"has_wood": true},
		Effects:            goap.State{"has_materials": true},
		ApplyEffectsOnExit: true,
		Execute:            func(goap.State) error { return nil },
	})
	craftToken := testutil.NewAction(t, goap.Action{
		Name:               "CraftToken",
		Preconditions:      goap.State{"has_materials": true},
		Effects:            goap.State{"has_token": true},
		ApplyEffectsOnExit: true,
		Execute:            func(goap.State) error { return nil },
	})
	buildShelter := testutil.NewAction(t, goap.Action{
		Name:               "BuildShelter",
		Preconditions:      goap.State{"has_wood": true},
		Effects:            goap.State{"sheltered": true},
		ApplyEffectsOnExit: true,
		Execute:            func(goap.State) error { return nil },
	})

	buildToken := testutil.NewGoal(t, goap.Goal{
		Name:         "BuildToken",
		DesiredState: goap.State{"has_token": true},
		Priority:     1,
	})
	takeShelter := testutil.NewGoal(t, goap.Goal{
		Name:          "TakeShelter",
		DesiredState:  goap.State{"sheltered": true},
		Preconditions: goap.State{"weather": "storm"},
		Priority:      200,
	})

	world := goap.State{
		"has_wood":      false,
		"has_materials": false,
		"has_token":     false,
		"sheltered":     false,
		"weather":       *weather,
	}

	automaton := testutil.NewAutomaton(t, "scout-1", world,
		[]*goap.Sensor{weatherSensor},
		[]*goap.Action{gatherWood, gatherMaterials, craftToken, buildShelter})

	controller := testutil.NewController(t, "scout-1", automaton, []*goap.Goal{buildToken, takeShelter})

	return automaton, controller
}

// TestDemoAgent_BuildsTokenThenPreemptsForShelter: the agent works the
// low-priority token chain until the weather sensor reports a storm, at
// which point the high-priority shelter goal preempts it and the agent
// builds a shelter instead.
func TestDemoAgent_BuildsTokenThenPreemptsForShelter(t *testing.T) {
	weather := "clear"
	automaton, controller := buildAgent(t, &weather)

	require.NoError(t, controller.Step(goap.StepDefault))
	assert.Equal(t, "BuildToken", automaton.Goal().Name)
	assert.False(t, automaton.World().Get("has_token").(bool))

	weather = "storm"

	// Arbitration runs before sensing within a tick, so the storm is
	// sensed on the next tick and the arbitration after it preempts the
	// token chain before it can finish.
	require.NoError(t, controller.Step(goap.StepDefault))
	require.NoError(t, controller.Step(goap.StepDefault))
	require.NotNil(t, automaton.Goal())
	assert.Equal(t, "TakeShelter", automaton.Goal().Name)
	assert.False(t, automaton.World().Get("has_token").(bool), "token chain was abandoned mid-plan")

	for i := 0; i < 4 && automaton.World().Get("sheltered") != true; i++ {
		require.NoError(t, controller.Step(goap.StepDefault))
	}
	assert.Equal(t, true, automaton.World().Get("sheltered"))
}

// TestDemoAgent_RunsTokenChainToCompletionWithoutWeather drives the
// low-priority chain alone to completion across several ticks: executing
// the returned plan's literal effects in order satisfies the goal.
func TestDemoAgent_RunsTokenChainToCompletionWithoutWeather(t *testing.T) {
	weather := "clear"
	automaton, controller := buildAgent(t, &weather)

	for i := 0; i < 10 && automaton.World().Get("has_token") != true; i++ {
		require.NoError(t, controller.Step(goap.StepDefault))
	}

	assert.Equal(t, true, automaton.World().Get("has_token"))
	assert.Equal(t, true, automaton.World().Get("has_wood"))
	assert.Equal(t, true, automaton.World().Get("has_materials"))
}
