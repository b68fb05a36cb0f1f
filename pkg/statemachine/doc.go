// Package statemachine provides immutable, stateless transition tables.
//
// A Table answers one question: given the current state and an event, what is
// the next state? It holds no current state itself, so a single Table can be
// shared by every entity whose state lives in a database row.
//
//	table, err := statemachine.NewBuilder[Status, Kind]().
//	    From(Active).When(PaymentFailed).To(PastDue).Add().
//	    From(PastDue).When(PaymentRecovered).To(Active).Add().
//	    Terminal(Cancelled).
//	    Build()
//
//	next, err := table.Next(ctx, current, event, nil)
//	switch {
//	case errors.Is(err, statemachine.ErrTerminalState):
//	case errors.Is(err, statemachine.ErrNoTransition):
//	}
//
// Several transitions may share a (from, event) pair; the first one whose
// guards all pass wins, which allows guard-based branching. Tables are safe
// for concurrent use once built.
package statemachine
