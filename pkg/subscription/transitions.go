package subscription

import (
	"context"

	"github.com/dmitrymomot/subgate/pkg/statemachine"
)

var transitions = statemachine.NewBuilder[Status, EventKind]().
	From(StatusNone).When(EventCreated).To(StatusActive).Add().
	From(StatusActive, StatusPastDue).When(EventPaymentFailed).To(StatusPastDue).Add().
	From(StatusPastDue).When(EventPaymentRecovered).To(StatusActive).Add().
	From(StatusActive, StatusPastDue, StatusCancelling).When(EventCancelScheduled).To(StatusCancelling).Add().
	From(StatusActive, StatusPastDue, StatusCancelling, StatusPaused).When(EventCancelled).To(StatusCancelled).Add().
	From(StatusCancelling, StatusPaused).When(EventResumed).To(StatusActive).Add().
	From(StatusActive, StatusPastDue, StatusPaused).When(EventPaused).To(StatusPaused).Add().
	From(StatusActive, StatusPastDue, StatusCancelling, StatusPaused).When(EventActivated).To(StatusActive).Add().
	From(StatusActive).When(EventUpdated).To(StatusActive).Add().
	From(StatusPastDue).When(EventUpdated).To(StatusPastDue).Add().
	From(StatusCancelling).When(EventUpdated).To(StatusCancelling).Add().
	From(StatusPaused).When(EventUpdated).To(StatusPaused).Add().
	Terminal(StatusCancelled).
	MustBuild()

// NextStatus returns the status reached from `from` on `kind`.
func NextStatus(ctx context.Context, from Status, kind EventKind) (Status, error) {
	return transitions.Next(ctx, from, kind, nil)
}

// IsTerminal reports whether no event can change the status.
func IsTerminal(s Status) bool {
	return transitions.IsTerminal(s)
}
