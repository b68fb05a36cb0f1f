package ratelimit

import (
	"context"
	"time"
)

// Store holds window counters.
type Store interface {
	// Increment atomically adds one to the counter at key and returns the new
	// value. The first increment sets the counter to expire after ttl.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
