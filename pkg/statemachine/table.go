package statemachine

import (
	"context"
	"fmt"
	"slices"
)

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard[S, E comparable] func(ctx context.Context, from S, event E, data any) bool

type transition[S, E comparable] struct {
	to     S
	guards []Guard[S, E]
}

// Table maps (state, event) pairs to next states.
type Table[S, E comparable] struct {
	transitions map[S]map[E][]transition[S, E]
	terminal    map[S]struct{}
}

// Next returns the state reached from `from` on `event`.
func (t *Table[S, E]) Next(ctx context.Context, from S, event E, data any) (S, error) {
	if t.IsTerminal(from) {
		return from, fmt.Errorf("%w: %v", ErrTerminalState, from)
	}

	candidates := t.transitions[from][event]
	if len(candidates) == 0 {
		return from, &TransitionError{From: fmt.Sprint(from), Event: fmt.Sprint(event)}
	}

	for _, tr := range candidates {
		if passes(ctx, tr.guards, from, event, data) {
			return tr.to, nil
		}
	}
	return from, &TransitionError{From: fmt.Sprint(from), Event: fmt.Sprint(event), Rejected: true}
}

// CanFire reports whether Next would succeed.
func (t *Table[S, E]) CanFire(ctx context.Context, from S, event E, data any) bool {
	_, err := t.Next(ctx, from, event, data)
	return err == nil
}

// IsTerminal reports whether no event can leave the state.
func (t *Table[S, E]) IsTerminal(s S) bool {
	_, ok := t.terminal[s]
	return ok
}

// Events lists the events with at least one transition out of the state.
// Order is unspecified.
func (t *Table[S, E]) Events(from S) []E {
	out := make([]E, 0, len(t.transitions[from]))
	for e := range t.transitions[from] {
		out = append(out, e)
	}
	return out
}

func passes[S, E comparable](ctx context.Context, guards []Guard[S, E], from S, event E, data any) bool {
	return !slices.ContainsFunc(guards, func(g Guard[S, E]) bool {
		return g != nil && !g(ctx, from, event, data)
	})
}
