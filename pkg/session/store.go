package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists session records keyed by session id.
//
// Implementations must make Revoke visible to every subsequent Get and must
// keep a per-account index so RevokeAllForAccount does not scan the keyspace.
type Store interface {
	// Put stores the session with the given time to live.
	Put(ctx context.Context, sess *Session, ttl time.Duration) error

	// Get returns the session or ErrSessionNotFound if it is absent, expired or revoked.
	Get(ctx context.Context, id string) (*Session, error)

	// Revoke invalidates a single session. Revoking an unknown id is not an error.
	Revoke(ctx context.Context, id string) error

	// RevokeAllForAccount invalidates every session of the account and
	// returns how many were revoked.
	RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}
