package subscription

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Subscription is the ledger record for one provider subscription.
type Subscription struct {
	ProviderSubID    string     `json:"provider_sub_id"`
	AccountID        uuid.UUID  `json:"account_id"`
	Provider         string     `json:"provider"`
	ProductID        string     `json:"product_id"`
	VariantID        string     `json:"variant_id"`
	Status           Status     `json:"status"`
	CurrentPeriodEnd time.Time  `json:"current_period_end"`
	LastEventID      string     `json:"last_event_id"`
	LastEventAt      time.Time  `json:"last_event_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Revision identifies the state a conditional write expects to replace.
type Revision struct {
	EventID string
	At      time.Time
}

// String encodes the revision for stores that compare opaque values.
func (r Revision) String() string {
	return r.EventID + "|" + strconv.FormatInt(r.At.UnixNano(), 10)
}

// Revision returns the current revision of the record.
func (s *Subscription) Revision() Revision {
	return Revision{EventID: s.LastEventID, At: s.LastEventAt}
}

// EffectiveStatus is the status as seen at now. A cancelling subscription
// whose period has ended reads as cancelled.
func (s *Subscription) EffectiveStatus(now time.Time) Status {
	if s == nil {
		return StatusNone
	}
	if s.Status == StatusCancelling && !s.CurrentPeriodEnd.IsZero() && !now.Before(s.CurrentPeriodEnd) {
		return StatusCancelled
	}
	return s.Status
}

func (s *Subscription) validate() error {
	if s == nil || s.ProviderSubID == "" || s.LastEventID == "" || !s.Status.Valid() {
		return ErrInvalidSubscription
	}
	return nil
}

func (s *Subscription) clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	if s.CancelledAt != nil {
		at := *s.CancelledAt
		c.CancelledAt = &at
	}
	return &c
}
