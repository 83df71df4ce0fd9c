package goap

import (
	"fmt"
	"sort"
	"strings"

	"goap-runtime/internal/goaperr"
)

// PlanStep is one resolved step of a Plan: an action paired with the
// concrete values its service effects were bound to at plan time.
type PlanStep struct {
	Action   *Action
	Services State
}

func (s PlanStep) String() string {
	if len(s.Services) == 0 {
		return s.Action.Name
	}
	return fmt.Sprintf("%s%v", s.Action.Name, s.Services)
}

// Plan is a finite, ordered sequence of steps; executing it without
// world-state interference drives the observed state to satisfy the goal
// it was computed for.
type Plan []PlanStep

func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = step.String()
	}
	return strings.Join(parts, " -> ")
}

// Planner is the regressive A* planner: it builds an effect→actions index
// once, then searches backward from a goal toward the current world state
// for each FindPlan call.
type Planner struct {
	actions         []*Action
	effectToActions map[string][]*Action
}

// NewPlanner builds the effect→actions index for actions.
func NewPlanner(actions []*Action) *Planner {
	index := make(map[string][]*Action)
	for _, a := range actions {
		for key := range a.Effects {
			index[key] = append(index[key], a)
		}
	}
	return &Planner{actions: actions, effectToActions: index}
}

// Actions returns the planner's action set, in declaration order.
func (p *Planner) Actions() []*Action { return p.actions }

// FindPlan searches for the minimum-cost action sequence that transforms
// world into a state satisfying goal. Returns an empty plan, nil if goal
// is already satisfied. Returns goaperr.PlanFailed if no such sequence
// exists.
func (p *Planner) FindPlan(world State, goal State) (Plan, error) {
	if world.Satisfies(goal) {
		return Plan{}, nil
	}

	initial := make(State, len(goal))
	for k := range goal {
		initial[k] = world.Get(k)
	}
	start := &node{current: initial, goal: goal, action: nil}

	search := &AStar[string, *node]{
		Key: (*node).key,
		Neighbours: func(n *node) []*node {
			return p.neighbours(world, n)
		},
		GStep: func(current, neighbour *node) float64 {
			return neighbour.action.cost(neighbour.services())
		},
		H: func(n *node) float64 {
			return float64(len(n.unsatisfiedKeys()))
		},
		IsFinished: (*node).isSatisfied,
	}

	path, err := search.FindPath(start)
	if err != nil {
		return nil, goaperr.PlanFailed
	}

	return planFromPath(path), nil
}

// neighbours enumerates every action whose effect on some unsatisfied key
// either matches the demand or is a service, builds the resulting child
// node via the backward rewrite, filters out actions that fail their
// procedural precondition at planning time, and finally sorts by action
// precedence descending. Candidates are gathered through the effect index
// but expanded in action declaration order, so the precedence sort's
// stable tie-break is declaration order, not key order.
func (p *Planner) neighbours(world State, n *node) []*node {
	candidates := make(map[*Action]bool)
	for _, key := range n.unsatisfiedKeys() {
		goalValue := n.goal.Get(key)

		for _, action := range p.effectToActions[key] {
			effectValue := action.Effects[key]
			if IsService(effectValue) || effectValue == goalValue {
				candidates[action] = true
			}
		}
	}

	var out []*node
	for _, action := range p.actions {
		if !candidates[action] {
			continue
		}

		child := n.applyAction(world, action)

		if !action.checkProcedural(child.services(), true) {
			continue
		}

		out = append(out, child)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].action.Precedence > out[j].action.Precedence
	})

	return out
}

// planFromPath converts a start→goal node path (search discovery order) to
// execution order. The search's start node represents the goal
// semantically, so the discovered path must be reversed to get the order
// actions should actually run in. The synthetic start node (action == nil)
// is dropped.
func planFromPath(path []*node) Plan {
	plan := make(Plan, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if n.action == nil {
			continue
		}
		plan = append(plan, PlanStep{Action: n.action, Services: n.services()})
	}
	return plan
}
