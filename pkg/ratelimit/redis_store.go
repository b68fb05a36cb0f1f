package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the counter and sets its expiry on the first hit in
// one round trip, so a counter can never be left without a TTL.
var incrScript = redis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return c
`)

// RedisStore keeps counters in Redis and is shared by every instance.
type RedisStore struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

// NewRedisStore creates a Redis-backed counter store. A zero opTimeout
// defaults to 500ms.
func NewRedisStore(client redis.UniversalClient, opTimeout ...time.Duration) *RedisStore {
	s := &RedisStore{client: client, opTimeout: 500 * time.Millisecond}
	if len(opTimeout) > 0 && opTimeout[0] > 0 {
		s.opTimeout = opTimeout[0]
	}
	return s
}

func (s *RedisStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if key == "" {
		return 0, ErrKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := incrScript.Run(ctx, s.client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return n, nil
}
