package goap

import (
	"fmt"
	"time"

	"goap-runtime/internal/goaperr"
)

// Phase is one of the automaton's four states.
type Phase int

const (
	PhaseWaitingOrders Phase = iota
	PhaseSensing
	PhasePlanning
	PhaseActing
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitingOrders:
		return "WAITING_ORDERS"
	case PhaseSensing:
		return "SENSING"
	case PhasePlanning:
		return "PLANNING"
	case PhaseActing:
		return "ACTING"
	default:
		return "UNKNOWN"
	}
}

// Automaton owns world state, working memory, the current plan, and the
// active goal, and drives the sense→plan→act state machine. It is a
// hand-written enum plus transition table rather than a decorator-based
// state machine library.
type Automaton struct {
	ID    string
	world State

	sensors []*Sensor
	actions []*Action
	planner *Planner

	phase Phase

	workingMemory   []Fact
	lastChangedKeys map[string]bool

	goal           *Goal
	plannedForGoal *Goal
	plan           Plan
	stepIndex      int
	planExhausted  bool
	replanned      bool

	lastFailedSensor string
}

// NewAutomaton validates the sensor/action sets for duplicate names and
// constructs an Automaton over world (taken by reference: the automaton
// owns and mutates it in place).
func NewAutomaton(id string, world State, sensors []*Sensor, actions []*Action) (*Automaton, error) {
	if world == nil {
		world = State{}
	}

	seenSensors := make(map[string]bool, len(sensors))
	for _, s := range sensors {
		if seenSensors[s.Name] {
			return nil, goaperr.New(goaperr.SensorAlreadyInCollection, "sensor %q already registered", s.Name)
		}
		seenSensors[s.Name] = true
	}

	seenActions := make(map[string]bool, len(actions))
	for _, a := range actions {
		if seenActions[a.Name] {
			return nil, goaperr.New(goaperr.ActionAlreadyInCollection, "action %q already registered", a.Name)
		}
		seenActions[a.Name] = true
	}

	return &Automaton{
		ID:      id,
		world:   world,
		sensors: sensors,
		actions: actions,
		planner: NewPlanner(actions),
		phase:   PhaseWaitingOrders,
	}, nil
}

// Phase returns the automaton's current state.
func (a *Automaton) Phase() Phase { return a.phase }

// World returns the live world state; callers must not mutate it outside
// the automaton's own sense/act steps.
func (a *Automaton) World() State { return a.world }

// WorkingMemory returns the current per-cycle fact list.
func (a *Automaton) WorkingMemory() []Fact { return a.workingMemory }

// CurrentPlan returns the plan currently being executed, if any.
func (a *Automaton) CurrentPlan() Plan { return a.plan }

// StepIndex returns the index of the next plan step to execute.
func (a *Automaton) StepIndex() int { return a.stepIndex }

// PlanExhausted reports whether the current plan has run to completion.
func (a *Automaton) PlanExhausted() bool {
	return a.planExhausted || (a.plan != nil && a.stepIndex >= len(a.plan))
}

// Goal returns the active goal, if any.
func (a *Automaton) Goal() *Goal { return a.goal }

// InputGoal records a new goal and invalidates the current plan,
// transitioning to WAITING_ORDERS from any state.
func (a *Automaton) InputGoal(g *Goal) {
	a.phase = PhaseWaitingOrders
	a.goal = g
	a.plan = nil
	a.stepIndex = 0
	a.planExhausted = false
}

// Sensor looks up a registered sensor by name, returning
// goaperr.SensorDoesNotExist if none is registered under that name.
func (a *Automaton) Sensor(name string) (*Sensor, error) {
	for _, s := range a.sensors {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, goaperr.New(goaperr.SensorDoesNotExist, "sensor %q not found", name)
}

// RemoveSensor drops a registered sensor by name, returning
// goaperr.SensorDoesNotExist if none is registered under that name.
func (a *Automaton) RemoveSensor(name string) error {
	for i, s := range a.sensors {
		if s.Name == name {
			a.sensors = append(a.sensors[:i], a.sensors[i+1:]...)
			return nil
		}
	}
	return goaperr.New(goaperr.SensorDoesNotExist, "sensor %q not found", name)
}

// Action looks up a registered action by name, returning
// goaperr.ActionDoesNotExist if none is registered under that name.
func (a *Automaton) Action(name string) (*Action, error) {
	for _, act := range a.actions {
		if act.Name == name {
			return act, nil
		}
	}
	return nil, goaperr.New(goaperr.ActionDoesNotExist, "action %q not found", name)
}

// RemoveAction drops a registered action by name and rebuilds the planner's
// effect index, returning goaperr.ActionDoesNotExist if none is registered
// under that name.
func (a *Automaton) RemoveAction(name string) error {
	for i, act := range a.actions {
		if act.Name == name {
			a.actions = append(a.actions[:i], a.actions[i+1:]...)
			a.planner = NewPlanner(a.actions)
			return nil
		}
	}
	return goaperr.New(goaperr.ActionDoesNotExist, "action %q not found", name)
}

// resetWorkingMemory clears the per-cycle fact scratchpad.
func (a *Automaton) resetWorkingMemory() {
	a.workingMemory = nil
}

// Sense runs WAITING_ORDERS/ACTING -sense-> SENSING: iterates sensors in
// declaration order, runs those whose preconditions match, deposits facts,
// and writes values into world state. Working memory is cleared first
// when entering from ACTING.
func (a *Automaton) Sense() error {
	if a.phase != PhaseWaitingOrders && a.phase != PhaseActing {
		return goaperr.New(goaperr.OperationFailed, "sense: invalid transition from %s", a.phase)
	}
	if a.phase == PhaseActing {
		a.resetWorkingMemory()
	}
	a.phase = PhaseSensing

	changed := make(map[string]bool)
	var firstErr error
	a.lastFailedSensor = ""

	for _, sensor := range a.sensors {
		if !a.world.Satisfies(sensor.Preconditions) {
			continue
		}

		value, err := sensor.Exec()
		if err != nil {
			if firstErr == nil {
				firstErr = goaperr.Wrap(goaperr.SensorError, fmt.Sprintf("sensor %q failed", sensor.Name), err)
				a.lastFailedSensor = sensor.Name
			}
			continue
		}

		if a.world.Get(sensor.Binding) != value {
			changed[sensor.Binding] = true
		}

		a.workingMemory = append(a.workingMemory, Fact{
			Binding:      sensor.Binding,
			Value:        value,
			SourceSensor: sensor.Name,
			Timestamp:    time.Now(),
		})
		a.world[sensor.Binding] = value
	}

	a.lastChangedKeys = changed
	return firstErr
}

// goalRelevantChange reports whether any key this pass's sensing touched
// also appears in the active goal's desired state.
func (a *Automaton) goalRelevantChange() bool {
	if a.goal == nil {
		return false
	}
	for k := range a.goal.DesiredState {
		if a.lastChangedKeys[k] {
			return true
		}
	}
	return false
}

// Plan runs SENSING -plan-> PLANNING: replans only if the goal changed,
// a goal-relevant key changed this sense pass, or there is no current
// plan; otherwise keeps the existing plan. Short-circuits straight back
// to WAITING_ORDERS with an empty plan if the goal is already satisfied.
func (a *Automaton) Plan() error {
	if a.phase != PhaseSensing {
		return goaperr.New(goaperr.OperationFailed, "plan: invalid transition from %s", a.phase)
	}
	a.phase = PhasePlanning
	a.replanned = false

	if a.goal == nil {
		a.phase = PhaseWaitingOrders
		return goaperr.New(goaperr.OperationFailed, "plan: no active goal")
	}

	if a.goal.Satisfied(a.world) {
		a.plan = Plan{}
		a.stepIndex = 0
		a.plannedForGoal = a.goal
		a.phase = PhaseWaitingOrders
		return nil
	}

	needsPlan := a.plannedForGoal != a.goal || a.goalRelevantChange() || len(a.plan) == 0 || a.PlanExhausted()
	if !needsPlan {
		return nil
	}

	plan, err := a.planner.FindPlan(a.world, a.goal.DesiredState)
	if err != nil {
		a.plan = nil
		a.stepIndex = 0
		a.phase = PhaseWaitingOrders
		return err
	}

	a.plan = plan
	a.stepIndex = 0
	a.planExhausted = false
	a.plannedForGoal = a.goal
	a.replanned = true
	return nil
}

// Replanned reports whether the most recent Plan() call actually invoked
// the search (as opposed to keeping an existing plan or short-circuiting
// on an already-satisfied goal).
func (a *Automaton) Replanned() bool { return a.replanned }

// LastFailedSensor returns the name of the first sensor that errored
// during the most recent Sense() call, or "" if none did.
func (a *Automaton) LastFailedSensor() string { return a.lastFailedSensor }

// Act runs PLANNING -act-> ACTING: executes the plan step at the current
// index, re-checking its procedural precondition, applying literal
// effects on success if the action requests it, and advancing the index.
func (a *Automaton) Act() error {
	if a.phase != PhasePlanning {
		return goaperr.New(goaperr.OperationFailed, "act: invalid transition from %s", a.phase)
	}
	a.phase = PhaseActing
	return a.execStep()
}

// ActOnce forces a single plan-step execution regardless of the current
// phase, provided a plan with a remaining step exists. It is the
// controller's single-step primitive: it does not sense, arbitrate, or
// replan; it merely consumes the next queued step, useful for
// deterministic tests and single-stepping in an observer UI.
func (a *Automaton) ActOnce() error {
	if a.stepIndex >= len(a.plan) {
		return goaperr.New(goaperr.OperationFailed, "act_once: no queued plan step")
	}
	a.phase = PhaseActing
	return a.execStep()
}

// execStep executes the plan step at the current index, re-checking its
// procedural precondition, applying literal effects on success if the
// action requests it, and advancing the index.
func (a *Automaton) execStep() error {
	if a.stepIndex >= len(a.plan) {
		a.planExhausted = true
		return nil
	}

	step := a.plan[a.stepIndex]

	if !step.Action.checkProcedural(step.Services, false) {
		a.plan = nil
		a.stepIndex = 0
		return goaperr.New(goaperr.OperationFailed,
			"act: procedural precondition failed for action %q", step.Action.Name)
	}

	if err := step.Action.Execute(step.Services); err != nil {
		a.plan = nil
		a.stepIndex = 0
		return goaperr.Wrap(goaperr.ActionError, fmt.Sprintf("action %q failed", step.Action.Name), err)
	}

	if step.Action.ApplyEffectsOnExit {
		for key, value := range step.Action.Effects {
			if !IsService(value) {
				a.world[key] = value
			}
		}
	}

	a.stepIndex++
	if a.stepIndex >= len(a.plan) {
		a.planExhausted = true
	}
	return nil
}

// Wait runs SENSING -wait-> WAITING_ORDERS, clearing working memory.
func (a *Automaton) Wait() error {
	if a.phase != PhaseSensing {
		return goaperr.New(goaperr.OperationFailed, "wait: invalid transition from %s", a.phase)
	}
	a.phase = PhaseWaitingOrders
	a.resetWorkingMemory()
	return nil
}
