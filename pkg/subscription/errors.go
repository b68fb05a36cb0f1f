package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrDuplicateEvent       = errors.New("subscription event already applied")
	ErrConflict             = errors.New("subscription changed concurrently")
	ErrConcurrentUpdate     = errors.New("subscription update retries exhausted")
	ErrStoreUnavailable     = errors.New("subscription store unavailable")
	ErrInvalidEvent         = errors.New("invalid subscription event")
	ErrInvalidSubscription  = errors.New("invalid subscription record")
	ErrInvalidPlans         = errors.New("invalid product to plan mapping")
	ErrUnknownBackend       = errors.New("unknown ledger backend")
)
