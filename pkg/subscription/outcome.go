package subscription

// IgnoreReason explains why an event left the ledger unchanged.
type IgnoreReason string

const (
	ReasonDuplicate           IgnoreReason = "duplicate"
	ReasonStale               IgnoreReason = "stale"
	ReasonUnknownSubscription IgnoreReason = "unknown-subscription"
	ReasonTerminal            IgnoreReason = "terminal"
	ReasonInvalidTransition   IgnoreReason = "invalid-transition"
	ReasonUnrecognized        IgnoreReason = "unrecognized"
)

func (r IgnoreReason) String() string {
	return string(r)
}

// Outcome is the result of ApplyEvent. Subscription is the record after the
// event, or the unchanged record when the event was ignored. It is nil when
// no record exists.
type Outcome struct {
	Applied      bool
	Reason       IgnoreReason
	Subscription *Subscription
}

// Applied returns an outcome for an event that changed the ledger.
func Applied(sub *Subscription) Outcome {
	return Outcome{Applied: true, Subscription: sub}
}

// Ignored returns an outcome for an event that was acknowledged without effect.
func Ignored(reason IgnoreReason, sub *Subscription) Outcome {
	return Outcome{Reason: reason, Subscription: sub}
}
