package goap

import (
	"context"
	"sync"
	"time"

	"goap-runtime/internal/goaperr"
	"goap-runtime/internal/logging"
	"goap-runtime/internal/metrics"
)

// StepMode controls how Controller.Step drives the automaton.
type StepMode int

const (
	// StepDefault runs the full arbitrate→sense→plan→act cycle.
	StepDefault StepMode = iota
	// StepOnce executes exactly one queued plan step without
	// re-arbitrating or replanning, even if a higher-priority goal is
	// eligible. Useful for deterministic tests and single-stepping.
	StepOnce
)

// Controller holds the candidate goal set and drives the Automaton's
// sense→plan→act cycle, performing goal arbitration each tick.
type Controller struct {
	Name string

	automaton *Automaton
	goals     []*Goal

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewController validates the goal set for duplicate names and constructs
// a Controller over automaton.
func NewController(name string, automaton *Automaton, goals []*Goal) (*Controller, error) {
	seen := make(map[string]bool, len(goals))
	for _, g := range goals {
		if seen[g.Name] {
			return nil, goaperr.New(goaperr.OperationFailed, "goal %q already registered", g.Name)
		}
		seen[g.Name] = true
	}
	return &Controller{
		Name:      name,
		automaton: automaton,
		goals:     goals,
		quit:      make(chan struct{}),
	}, nil
}

// Automaton returns the controlled automaton, for inspection (tests,
// observers).
func (c *Controller) Automaton() *Automaton { return c.automaton }

// arbitrate returns the highest-priority eligible goal, ties broken by
// declaration order.
func (c *Controller) arbitrate() *Goal {
	var best *Goal
	for _, g := range c.goals {
		if !g.Eligible(c.automaton.World()) {
			continue
		}
		if best == nil || g.Priority > best.Priority {
			best = g
		}
	}
	return best
}

// Step runs one arbitrate→sense→plan→act cycle (mode StepDefault), or
// executes exactly one already-queued plan step without arbitration or
// replanning (mode StepOnce).
func (c *Controller) Step(mode StepMode) error {
	ctx, _ := logging.WithCycle(context.Background(), c.Name)

	start := time.Now()
	defer func() { metrics.RecordTick(c.Name, time.Since(start)) }()

	if mode == StepOnce {
		var pendingAction string
		if plan := c.automaton.CurrentPlan(); c.automaton.StepIndex() < len(plan) {
			pendingAction = plan[c.automaton.StepIndex()].Action.Name
		}
		if err := c.automaton.ActOnce(); err != nil {
			logging.LogWarning(ctx, "step_once failed", map[string]interface{}{"error": err.Error()})
			if goaperr.Is(err, goaperr.ActionError) {
				metrics.RecordActionError(c.Name, pendingAction)
			}
			return err
		}
		return nil
	}

	eligible := c.arbitrate()
	switchedGoal := eligible != c.automaton.Goal()
	if switchedGoal {
		var newName string
		if eligible != nil {
			newName = eligible.Name
		}
		logging.LogInfo(ctx, "arbitration selected a new active goal", map[string]interface{}{"goal": newName})
		c.automaton.InputGoal(eligible)
	}
	if eligible != nil {
		metrics.SetActiveGoalPriority(c.Name, eligible.Priority)
	} else {
		metrics.SetActiveGoalPriority(c.Name, -1)
	}

	// InputGoal (above) already forced the automaton back to
	// WAITING_ORDERS on a goal change, so this single Sense call is the
	// forced re-sense: no separate second call is needed or valid, since
	// Sense only transitions out of WAITING_ORDERS or ACTING.
	if err := c.automaton.Sense(); err != nil {
		logging.LogWarning(ctx, "sense reported an error; continuing cycle", map[string]interface{}{"error": err.Error()})
		metrics.RecordSensorError(c.Name, c.automaton.LastFailedSensor())
	}

	if c.automaton.Goal() == nil {
		if err := c.automaton.Wait(); err != nil {
			logging.LogWarning(ctx, "wait transition failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	if err := c.automaton.Plan(); err != nil {
		if goaperr.Is(err, goaperr.PlanFailed) {
			logging.LogWarning(ctx, "no plan satisfies the active goal", map[string]interface{}{"goal": c.automaton.Goal().Name, "error": err.Error()})
			return nil
		}
		logging.LogError(ctx, err, "plan transition failed", nil)
		return nil
	}

	if c.automaton.Phase() != PhasePlanning {
		// The goal was already satisfied; automaton.Plan() routed itself
		// straight back to WAITING_ORDERS.
		return nil
	}

	if c.automaton.Replanned() {
		metrics.RecordReplan(c.Name, c.automaton.Goal().Name, len(c.automaton.CurrentPlan()))
	}

	logging.LogInfo(ctx, "acting on current plan", map[string]interface{}{
		"goal":     c.automaton.Goal().Name,
		"plan_len": len(c.automaton.CurrentPlan()),
	})

	pendingAction := c.automaton.CurrentPlan()[c.automaton.StepIndex()].Action.Name
	if err := c.automaton.Act(); err != nil {
		logging.LogWarning(ctx, "act reported an error; plan invalidated", map[string]interface{}{"error": err.Error()})
		if goaperr.Is(err, goaperr.ActionError) {
			metrics.RecordActionError(c.Name, pendingAction)
		}
		return nil
	}

	return nil
}

// Start runs Step(StepDefault) once per interval until Stop is called. It
// blocks the calling goroutine; callers typically invoke it via `go
// controller.Start(interval)`.
func (c *Controller) Start(interval time.Duration) {
	c.wg.Add(1)
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.quit:
			return
		case <-ticker.C:
			_ = c.Step(StepDefault)
		}
	}
}

// Stop ends the loop at the next tick boundary and waits for it to exit.
func (c *Controller) Stop() {
	c.once.Do(func() { close(c.quit) })
	c.wg.Wait()
}
