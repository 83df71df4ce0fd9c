package goap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAction_Defaults(t *testing.T) {
	a, err := NewAction(Action{
		Name:    "rest",
		Execute: func(State) error { return nil },
	})
	require.NoError(t, err)
	require.NotNil(t, a.Cost)
	assert.Equal(t, 1.0, *a.Cost)
	assert.NotNil(t, a.Preconditions)
	assert.NotNil(t, a.Effects)
	assert.Empty(t, a.ServiceNames())
}

func TestNewAction_RequiresName(t *testing.T) {
	_, err := NewAction(Action{Execute: func(State) error { return nil }})
	require.Error(t, err)
}

func TestNewAction_RequiresExecute(t *testing.T) {
	_, err := NewAction(Action{Name: "sleep"})
	require.Error(t, err)
}

func TestNewAction_DerivesSortedServiceNames(t *testing.T) {
	a, err := NewAction(Action{
		Name: "forage",
		Effects: State{
			"has_food":  Service,
			"has_water": Service,
			"tired":     false,
		},
		Execute: func(State) error { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"has_food", "has_water"}, a.ServiceNames())
}

func TestNewAction_RejectsServiceSentinelPrecondition(t *testing.T) {
	_, err := NewAction(Action{
		Name:          "broken",
		Preconditions: State{"has_food": Service},
		Execute:       func(State) error { return nil },
	})
	require.Error(t, err)
}

func TestNewAction_RejectsDanglingEffectReference(t *testing.T) {
	_, err := NewAction(Action{
		Name:          "broken",
		Preconditions: State{"location": Reference("not_an_effect")},
		Execute:       func(State) error { return nil },
	})
	require.Error(t, err)
}

func TestNewAction_AllowsValidEffectReference(t *testing.T) {
	a, err := NewAction(Action{
		Name:          "chant",
		Preconditions: State{"incantation": Reference("incantation")},
		Effects:       State{"incantation": Service},
		Execute:       func(State) error { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"incantation"}, a.ServiceNames())
}

func TestAction_CheckProcedural_NilDefaultsTrue(t *testing.T) {
	a, err := NewAction(Action{Name: "a", Execute: func(State) error { return nil }})
	require.NoError(t, err)
	assert.True(t, a.checkProcedural(State{}, true))
}

func TestAction_Cost_UsesGetCostWhenSet(t *testing.T) {
	a, err := NewAction(Action{
		Name:    "haul",
		Cost:    CostPtr(1),
		GetCost: func(services State) float64 { return services["distance"].(float64) },
		Execute: func(State) error { return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, 42.0, a.cost(State{"distance": 42.0}))
}

// TestNewAction_ExplicitZeroCostIsPreservedAsFree verifies a caller that
// sets Cost to an explicit zero (a genuinely free action) keeps that value
// rather than falling back to the construction-time default of 1.0.
func TestNewAction_ExplicitZeroCostIsPreservedAsFree(t *testing.T) {
	a, err := NewAction(Action{
		Name:    "free_action",
		Cost:    CostPtr(0),
		Execute: func(State) error { return nil },
	})
	require.NoError(t, err)
	require.NotNil(t, a.Cost)
	assert.Equal(t, 0.0, *a.Cost)
	assert.Equal(t, 0.0, a.cost(State{}))
}
