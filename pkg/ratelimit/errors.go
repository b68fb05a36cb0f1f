package ratelimit

import "errors"

var (
	// ErrInvalidRule wraps every rule parsing and validation failure.
	ErrInvalidRule = errors.New("ratelimit: invalid rule")
	// ErrKeyRequired means the request could not be attributed to a client.
	ErrKeyRequired = errors.New("ratelimit: client key required")
	// ErrStoreRequired is returned by NewFixedWindow for a nil store.
	ErrStoreRequired = errors.New("ratelimit: store required")
	// ErrStoreUnavailable wraps counter store failures. Callers reject the
	// request rather than let it through uncounted.
	ErrStoreUnavailable = errors.New("ratelimit: store unavailable")
)
