package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subgate/pkg/logger"
	"github.com/dmitrymomot/subgate/pkg/statemachine"
)

// Entitlement is what an account may access right now.
type Entitlement struct {
	Plan          string    `json:"plan"`
	Active        bool      `json:"active"`
	Status        Status    `json:"status"`
	PeriodEnd     time.Time `json:"period_end,omitzero"`
	ProviderSubID string    `json:"provider_subscription_id,omitempty"`
}

// Ledger applies billing events to subscriptions and answers entitlement
// queries. It holds no subscription state itself.
type Ledger struct {
	store       Store
	now         func() time.Time
	logger      *slog.Logger
	maxAttempts int
	plans       Plans
	freePlan    string
	defaultPlan string
}

// NewLedger creates a ledger over store.
func NewLedger(store Store, opts ...Option) *Ledger {
	if store == nil {
		panic("subscription: store is required")
	}
	l := &Ledger{
		store:       store,
		now:         time.Now,
		logger:      logger.Discard(),
		maxAttempts: 5,
		plans:       Plans{},
		freePlan:    "free",
		defaultPlan: "pro",
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(logger.Component("subscription"))
	return l
}

// Get returns the current subscription of the account, or nil when the
// account never subscribed.
func (l *Ledger) Get(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	sub, err := l.store.GetByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// Entitlement resolves the plan the account is entitled to.
func (l *Ledger) Entitlement(ctx context.Context, accountID uuid.UUID) (Entitlement, error) {
	sub, err := l.Get(ctx, accountID)
	if err != nil {
		return Entitlement{}, err
	}
	if sub == nil {
		return Entitlement{Plan: l.freePlan, Status: StatusNone}, nil
	}

	status := sub.EffectiveStatus(l.now())
	ent := Entitlement{
		Plan:          l.freePlan,
		Active:        status.Entitled(),
		Status:        status,
		PeriodEnd:     sub.CurrentPeriodEnd,
		ProviderSubID: sub.ProviderSubID,
	}
	if ent.Active {
		ent.Plan = l.defaultPlan
		if plan, ok := l.plans.Resolve(sub.ProductID, sub.VariantID); ok {
			ent.Plan = plan
		}
	}
	return ent, nil
}

// ApplyEvent applies ev at most once. Duplicate, stale, unknown and
// out-of-vocabulary events yield an ignored Outcome and a nil error. A
// non-nil error means the event was not recorded and may be redelivered.
func (l *Ledger) ApplyEvent(ctx context.Context, ev Event) (Outcome, error) {
	if err := ev.Validate(); err != nil {
		return Outcome{}, err
	}
	if ev.Kind == EventUnrecognized {
		return Ignored(ReasonUnrecognized, nil), nil
	}
	ev = ev.normalize()

	for attempt := range l.maxAttempts {
		outcome, err := l.apply(ctx, ev)
		if errors.Is(err, ErrConflict) {
			l.logger.DebugContext(ctx, "conditional write lost, retrying",
				logger.EventID(ev.ID),
				logger.SubscriptionID(ev.ProviderSubID),
				logger.RetryCount(attempt+1),
			)
			continue
		}
		if err != nil {
			return Outcome{}, err
		}
		l.logOutcome(ctx, ev, outcome)
		return outcome, nil
	}

	l.logger.WarnContext(ctx, "subscription update retries exhausted",
		logger.EventID(ev.ID),
		logger.SubscriptionID(ev.ProviderSubID),
		logger.RetryCount(l.maxAttempts),
	)
	return Outcome{}, ErrConcurrentUpdate
}

func (l *Ledger) apply(ctx context.Context, ev Event) (Outcome, error) {
	seen, err := l.store.EventApplied(ctx, ev.ID)
	if err != nil {
		return Outcome{}, err
	}
	if seen {
		return Ignored(ReasonDuplicate, nil), nil
	}

	current, err := l.store.Get(ctx, ev.ProviderSubID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		if ev.Kind != EventCreated {
			return Ignored(ReasonUnknownSubscription, nil), nil
		}
		return l.create(ctx, ev)
	}
	if err != nil {
		return Outcome{}, err
	}

	if current.LastEventID == ev.ID {
		return Ignored(ReasonDuplicate, current), nil
	}
	if !ev.OccurredAt.After(current.LastEventAt) {
		return Ignored(ReasonStale, current), nil
	}

	next, err := NextStatus(ctx, current.Status, ev.Kind)
	if err != nil {
		if errors.Is(err, statemachine.ErrTerminalState) {
			return Ignored(ReasonTerminal, current), nil
		}
		return Ignored(ReasonInvalidTransition, current), nil
	}

	updated := l.transition(current, ev, next)
	if err := l.store.Update(ctx, updated, current.Revision()); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return Ignored(ReasonDuplicate, current), nil
		}
		return Outcome{}, err
	}
	return Applied(updated), nil
}

func (l *Ledger) create(ctx context.Context, ev Event) (Outcome, error) {
	status, err := NextStatus(ctx, StatusNone, ev.Kind)
	if err != nil {
		return Ignored(ReasonInvalidTransition, nil), nil
	}
	now := l.now().UTC()
	sub := &Subscription{
		ProviderSubID:    ev.ProviderSubID,
		AccountID:        ev.AccountID,
		Provider:         ev.Provider,
		ProductID:        ev.ProductID,
		VariantID:        ev.VariantID,
		Status:           status,
		CurrentPeriodEnd: ev.PeriodEnd,
		LastEventID:      ev.ID,
		LastEventAt:      ev.OccurredAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := l.store.Create(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return Ignored(ReasonDuplicate, nil), nil
		}
		return Outcome{}, err
	}
	return Applied(sub), nil
}

func (l *Ledger) transition(current *Subscription, ev Event, next Status) *Subscription {
	sub := current.clone()
	sub.Status = next
	sub.LastEventID = ev.ID
	sub.LastEventAt = ev.OccurredAt
	sub.UpdatedAt = l.now().UTC()
	if ev.ProductID != "" {
		sub.ProductID = ev.ProductID
	}
	if ev.VariantID != "" {
		sub.VariantID = ev.VariantID
	}
	if !ev.PeriodEnd.IsZero() {
		sub.CurrentPeriodEnd = ev.PeriodEnd
	}

	switch next {
	case StatusActive:
		sub.CancelledAt = nil
	case StatusCancelling, StatusCancelled:
		if sub.CancelledAt == nil {
			at := ev.OccurredAt
			sub.CancelledAt = &at
		}
	}
	return sub
}

func (l *Ledger) logOutcome(ctx context.Context, ev Event, outcome Outcome) {
	attrs := []any{
		logger.EventID(ev.ID),
		logger.EventType(ev.Kind.String()),
		logger.SubscriptionID(ev.ProviderSubID),
	}
	if outcome.Applied {
		attrs = append(attrs, slog.String("status", outcome.Subscription.Status.String()))
		l.logger.InfoContext(ctx, "subscription event applied", attrs...)
		return
	}
	attrs = append(attrs, slog.String("reason", outcome.Reason.String()))
	l.logger.InfoContext(ctx, "subscription event ignored", attrs...)
}
