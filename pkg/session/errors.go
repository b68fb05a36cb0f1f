package session

import (
	"errors"

	"github.com/dmitrymomot/subgate/pkg/token"
)

var (
	// ErrSessionNotFound indicates the session does not exist, expired or was revoked.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrStoreUnavailable indicates the session store could not be reached.
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrInvalidSession indicates a malformed session record.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrInvalidTTL indicates a time to live that is not positive, or a
	// session lifetime under a second.
	ErrInvalidTTL = errors.New("session.invalid_ttl")

	// ErrNoToken indicates the request carries no session token.
	ErrNoToken = errors.New("session.no_token")

	// ErrRefreshDisabled is returned by Refresh when it is not enabled.
	ErrRefreshDisabled = errors.New("session.refresh_disabled")

	// ErrRevokePartial indicates a bulk revocation did not finish.
	ErrRevokePartial = errors.New("session.revoke_partial")

	// ErrIDGeneration indicates the random source failed.
	ErrIDGeneration = errors.New("session.id_generation_failed")
)

// IsAuthError reports whether err means the caller is not authenticated,
// as opposed to an infrastructure failure.
func IsAuthError(err error) bool {
	return errors.Is(err, token.ErrInvalidToken) ||
		errors.Is(err, token.ErrExpired) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrNoToken)
}
