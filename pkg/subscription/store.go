package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store persists subscriptions and the log of applied event ids.
//
// Create and Update record sub.LastEventID atomically with the write. Both
// return ErrDuplicateEvent when that id was already recorded. Create returns
// ErrConflict when the subscription exists; Update returns ErrConflict when
// the stored revision differs from prev. Infrastructure failures are joined
// with ErrStoreUnavailable.
type Store interface {
	Get(ctx context.Context, providerSubID string) (*Subscription, error)
	// GetByAccount returns the most recently created subscription of the account.
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error)
	EventApplied(ctx context.Context, eventID string) (bool, error)
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription, prev Revision) error
}
