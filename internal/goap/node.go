package goap

import (
	"fmt"
	"sort"
	"strings"
)

// node is the regressive planner's search node: a pair of (current, goal)
// state plus the action that produced it by backward application. Nodes
// are produced fresh by applyAction; identity for search bookkeeping is
// via a content hash (key()), not object identity.
type node struct {
	current State
	goal    State
	action  *Action
}

// services returns the concrete bindings for action's service effects,
// read from current (which applyAction populated from goal demand).
func (n *node) services() State {
	if n.action == nil {
		return State{}
	}
	out := make(State, len(n.action.serviceNames))
	for _, name := range n.action.serviceNames {
		out[name] = n.current.Get(name)
	}
	return out
}

// unsatisfiedKeys returns the goal keys whose demand the current state
// does not meet.
func (n *node) unsatisfiedKeys() []string {
	return n.current.UnsatisfiedKeys(n.goal)
}

func (n *node) isSatisfied() bool {
	return len(n.unsatisfiedKeys()) == 0
}

// applyAction performs the backward rewrite: given this node and an
// action to apply, produce the child node that represents "having
// applied action to reach this node's goal."
func (n *node) applyAction(world State, action *Action) *node {
	current := n.current.Clone()

	for key, value := range action.Effects {
		switch {
		case IsService(value):
			// The action fulfills this key by whatever the current goal
			// demands.
			current[key] = n.goal.Get(key)
		case actionHasPrecondition(action, key):
			// Shared precondition/effect key: the precondition pass
			// (below) puts the demand into goal and reseeds current from
			// world state, so seed from world state here too.
			current[key] = world.Get(key)
		default:
			current[key] = value
		}
	}

	goal := n.goal.Clone()
	for key, value := range action.Preconditions {
		if ref, ok := IsReference(value); ok {
			goal[key] = current[ref.Name]
		} else {
			goal[key] = value
		}
		current[key] = world.Get(key)
	}

	return &node{current: current, goal: goal, action: action}
}

func actionHasPrecondition(a *Action, key string) bool {
	_, ok := a.Preconditions[key]
	return ok
}

// key produces a deterministic content hash for closed-set dedup,
// combining sorted current/goal pairs and the incoming action's name.
func (n *node) key() string {
	var b strings.Builder
	writeState(&b, "c", n.current)
	writeState(&b, "g", n.goal)
	if n.action != nil {
		b.WriteString("a:")
		b.WriteString(n.action.Name)
	}
	return b.String()
}

func writeState(b *strings.Builder, prefix string, s State) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s.%s=%v;", prefix, k, s[k])
	}
}
