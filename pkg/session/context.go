package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity is what an authenticated request knows about its caller.
type Identity struct {
	AccountID uuid.UUID
	SessionID string
	ExpiresAt time.Time
}

type identityContextKey struct{}

// WithIdentity adds an identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the identity placed by the middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// AccountIDFromContext returns the authenticated account id.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return id.AccountID, true
}
