package statemachine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is reported by Build for a transition missing its
	// source, event or target.
	ErrInvalidTransition = errors.New("statemachine: transition needs from, event and to")
	// ErrTerminalState is returned by Next for a state no event may leave.
	ErrTerminalState = errors.New("statemachine: state is terminal")
	// ErrNoTransition means the table has no edge for the state and event.
	ErrNoTransition = errors.New("statemachine: no transition")
	// ErrRejected means every candidate edge was blocked by a guard.
	ErrRejected = errors.New("statemachine: transition rejected by guards")
)

// TransitionError carries the state and event of a failed Next call. It
// matches ErrNoTransition or ErrRejected with errors.Is.
type TransitionError struct {
	From     string
	Event    string
	Rejected bool
}

func (e *TransitionError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("statemachine: %q on %q rejected by guards", e.Event, e.From)
	}
	return fmt.Sprintf("statemachine: no transition from %q on %q", e.From, e.Event)
}

func (e *TransitionError) Is(target error) bool {
	if e.Rejected {
		return target == ErrRejected
	}
	return target == ErrNoTransition
}
