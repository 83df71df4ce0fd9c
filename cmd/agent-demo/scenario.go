package main

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"goap-runtime/internal/goap"
)

// weatherSwitch is the demo's stand-in for a real weather probe: the
// observer's /storm control endpoint flips it, and WeatherSensor reports
// whatever it currently holds. A real deployment would replace this with
// a concrete probe behind the same Sensor declaration.
type weatherSwitch struct {
	storm atomic.Bool
}

func (w *weatherSwitch) setStorm(v bool) { w.storm.Store(v) }

func (w *weatherSwitch) read() string {
	if w.storm.Load() {
		return "storm"
	}
	return "clear"
}

// buildDemoAgent wires a concrete agent combining priority preemption
// (a low-priority resource goal against a weather-gated high-priority
// one) with a service chain: ForageWoodType's service effect is bound at
// plan time to the "oak" that GatherWood's literal precondition demands,
// feeding the resource goal's action sequence.
func buildDemoAgent(weather *weatherSwitch) (world goap.State, sensors []*goap.Sensor, actions []*goap.Action, goals []*goap.Goal, err error) {
	world = goap.State{
		"has_wood":      false,
		"has_materials": false,
		"has_token":     false,
		"sheltered":     false,
		"weather":       "clear",
	}

	weatherSensor := &goap.Sensor{
		Name:    "WeatherSensor",
		Binding: "weather",
		Exec: func() (goap.Value, error) {
			return weather.read(), nil
		},
	}

	forageWoodType, err := goap.NewAction(goap.Action{
		Name:    "ForageWoodType",
		Effects: goap.State{"wood_type": goap.Service},
		Execute: func(services goap.State) error {
			log.Info().Interface("wood_type", services["wood_type"]).Msg("foraged a wood type for this cycle")
			return nil
		},
	})
	if err != nil {
		return
	}

	gatherWood, err := goap.NewAction(goap.Action{
		Name:               "GatherWood",
		Preconditions:      goap.State{"wood_type": "oak"},
		Effects:            goap.State{"has_wood": true},
		ApplyEffectsOnExit: true,
		Execute: func(services goap.State) error {
			log.Info().Msg("gathered oak")
			return nil
		},
	})
	if err != nil {
		return
	}

	gatherMaterials, err := goap.NewAction(goap.Action{
		Name:               "GatherMaterials",
		Preconditions:      goap.State{"has_wood": true},
		Effects:            goap.State{"has_materials": true},
		ApplyEffectsOnExit: true,
		Execute:            func(goap.State) error { return nil },
	})
	if err != nil {
		return
	}

	craftToken, err := goap.NewAction(goap.Action{
		Name:               "CraftToken",
		Preconditions:      goap.State{"has_materials": true},
		Effects:            goap.State{"has_token": true},
		ApplyEffectsOnExit: true,
		Execute:            func(goap.State) error { return nil },
	})
	if err != nil {
		return
	}

	buildShelter, err := goap.NewAction(goap.Action{
		Name:               "BuildShelter",
		Preconditions:      goap.State{"has_wood": true},
		Effects:            goap.State{"sheltered": true},
		Precedence:         10,
		ApplyEffectsOnExit: true,
		Execute:            func(goap.State) error { return nil },
	})
	if err != nil {
		return
	}

	buildToken, err := goap.NewGoal(goap.Goal{
		Name:         "BuildToken",
		DesiredState: goap.State{"has_token": true},
		Priority:     1,
	})
	if err != nil {
		return
	}

	takeShelter, err := goap.NewGoal(goap.Goal{
		Name:          "TakeShelter",
		DesiredState:  goap.State{"sheltered": true},
		Preconditions: goap.State{"weather": "storm"},
		Priority:      200,
	})
	if err != nil {
		return
	}

	sensors = []*goap.Sensor{weatherSensor}
	actions = []*goap.Action{forageWoodType, gatherWood, gatherMaterials, craftToken, buildShelter}
	goals = []*goap.Goal{buildToken, takeShelter}
	return world, sensors, actions, goals, nil
}
