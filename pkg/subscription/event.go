package subscription

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind is the provider-independent vocabulary of billing events.
type EventKind string

const (
	EventCreated          EventKind = "created"
	EventPaymentFailed    EventKind = "payment_failed"
	EventPaymentRecovered EventKind = "payment_recovered"
	EventCancelScheduled  EventKind = "cancel_scheduled"
	EventCancelled        EventKind = "cancelled"
	EventResumed          EventKind = "resumed"
	EventPaused           EventKind = "paused"
	EventUpdated          EventKind = "updated"

	// EventActivated reports the provider-side status as active, whatever
	// the ledger holds: it recovers, resumes, unpauses or keeps the record.
	EventActivated EventKind = "activated"

	// EventUnrecognized marks provider events outside the vocabulary.
	// They are acknowledged and never applied.
	EventUnrecognized EventKind = "unrecognized"
)

func (k EventKind) String() string {
	return string(k)
}

// Event is a verified billing event translated from a provider payload.
type Event struct {
	ID            string
	Kind          EventKind
	Provider      string
	ProviderEvent string // raw provider event name, for logs
	ProviderSubID string
	AccountID     uuid.UUID
	ProductID     string
	VariantID     string
	OccurredAt    time.Time
	PeriodEnd     time.Time // zero when the payload carries none
}

// Validate checks the fields the ledger relies on.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	}
	if e.Kind == EventUnrecognized {
		return nil
	}
	if e.ProviderSubID == "" {
		return fmt.Errorf("%w: missing subscription id", ErrInvalidEvent)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEvent)
	}
	if e.Kind == EventCreated && e.AccountID == uuid.Nil {
		return fmt.Errorf("%w: created event without account id", ErrInvalidEvent)
	}
	return nil
}

// normalize keeps timestamps at the precision every store can round-trip.
func (e Event) normalize() Event {
	e.OccurredAt = e.OccurredAt.UTC().Truncate(time.Microsecond)
	if !e.PeriodEnd.IsZero() {
		e.PeriodEnd = e.PeriodEnd.UTC().Truncate(time.Microsecond)
	}
	return e
}
