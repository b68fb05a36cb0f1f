package subscription

import (
	"log/slog"
	"time"
)

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for reads and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithMaxAttempts bounds retries of a conflicting conditional write.
func WithMaxAttempts(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithPlans sets the product to plan mapping used by Entitlement.
func WithPlans(plans Plans) Option {
	return func(l *Ledger) {
		if plans != nil {
			l.plans = plans
		}
	}
}

// WithFreePlan sets the plan reported for accounts without entitlement.
func WithFreePlan(plan string) Option {
	return func(l *Ledger) {
		if plan != "" {
			l.freePlan = plan
		}
	}
}

// WithDefaultPlan sets the plan reported for entitled subscriptions whose
// product has no mapping.
func WithDefaultPlan(plan string) Option {
	return func(l *Ledger) {
		if plan != "" {
			l.defaultPlan = plan
		}
	}
}
