package subscription

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusNone       Status = "none"
	StatusActive     Status = "active"
	StatusPastDue    Status = "past_due"
	StatusCancelling Status = "cancelling"
	StatusPaused     Status = "paused"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusActive, StatusPastDue, StatusCancelling, StatusPaused, StatusCancelled:
		return true
	default:
		return false
	}
}

// Entitled reports whether the status grants access to paid features.
// Past due subscriptions keep access during the provider's dunning period;
// paused ones do not.
func (s Status) Entitled() bool {
	switch s {
	case StatusActive, StatusPastDue, StatusCancelling:
		return true
	default:
		return false
	}
}
