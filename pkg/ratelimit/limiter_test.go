package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/ratelimit"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func rules(routes ratelimit.Routes) ratelimit.RuleSet {
	return ratelimit.RuleSet{
		Default: ratelimit.Rule{Limit: 100, Window: time.Minute},
		Routes:  routes,
	}
}

func TestFixedWindow_SixthRequestRejected(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: start}
	limiter, err := ratelimit.NewFixedWindow(
		ratelimit.NewMemoryStoreWithClock(clk.Now),
		rules(ratelimit.Routes{"login": {Limit: 5, Window: 60 * time.Second}}),
		ratelimit.WithClock(clk.Now),
	)
	require.NoError(t, err)
	ctx := context.Background()

	for i := range 5 {
		clk.Set(start.Add(time.Duration(i) * 10 * time.Second))
		d, err := limiter.Allow(ctx, "login", "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 4-i, d.Remaining)
	}

	clk.Set(start.Add(50 * time.Second))
	d, err := limiter.Allow(ctx, "login", "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 10*time.Second, d.RetryAfter)
	assert.Positive(t, d.RetryAfter)

	// Next window starts fresh.
	clk.Set(start.Add(60 * time.Second))
	d, err = limiter.Allow(ctx, "login", "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindow_IsolatesRoutesAndClients(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(
		ratelimit.NewMemoryStore(),
		rules(ratelimit.Routes{
			"login": {Limit: 1, Window: time.Hour},
			"other": {Limit: 1, Window: time.Hour},
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	for _, tc := range []struct{ route, client string }{
		{"login", "a"}, {"login", "b"}, {"other", "a"},
	} {
		d, err := limiter.Allow(ctx, tc.route, tc.client)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "%s/%s", tc.route, tc.client)
	}

	d, err := limiter.Allow(ctx, "login", "a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestFixedWindow_DefaultRule(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), ratelimit.RuleSet{
		Default: ratelimit.Rule{Limit: 2, Window: time.Minute},
	})
	require.NoError(t, err)

	ctx := context.Background()
	for range 2 {
		d, err := limiter.Allow(ctx, "unlisted", "c")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := limiter.Allow(ctx, "unlisted", "c")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 2, d.Limit)
}

func TestFixedWindow_ConcurrentCountsExact(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := ratelimit.NewFixedWindow(
		ratelimit.NewRedisStore(client),
		rules(ratelimit.Routes{"api": {Limit: 10, Window: time.Hour}}),
	)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Allow(context.Background(), "api", "client")
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestRedisStore_SetsExpiry(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := ratelimit.NewRedisStore(client)
	ctx := context.Background()

	n, err := store.Increment(ctx, "rl:x", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 30*time.Second, mr.TTL("rl:x"))

	n, err = store.Increment(ctx, "rl:x", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 30*time.Second, mr.TTL("rl:x"), "expiry set on first hit only")

	mr.FastForward(31 * time.Second)
	n, err = store.Increment(ctx, "rl:x", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestFixedWindow_FailsClosed(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(brokenStore{}, rules(nil))
	require.NoError(t, err)

	d, err := limiter.Allow(context.Background(), "login", "c")
	assert.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
	assert.False(t, d.Allowed)
}

func TestFixedWindow_Validation(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.NewFixedWindow(nil, rules(nil))
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)

	_, err = ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), ratelimit.RuleSet{})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidRule)

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), rules(nil))
	require.NoError(t, err)
	_, err = limiter.Allow(context.Background(), "login", "")
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
}

func TestMemoryStore_Sweeps(t *testing.T) {
	t.Parallel()

	clk := &clock{t: time.Now()}
	store := ratelimit.NewMemoryStoreWithClock(clk.Now)
	ctx := context.Background()

	for i := range 1000 {
		_, err := store.Increment(ctx, fmt.Sprintf("k%d", i), time.Second)
		require.NoError(t, err)
	}
	clk.Set(clk.Now().Add(2 * time.Second))
	for i := range 24 {
		_, err := store.Increment(ctx, fmt.Sprintf("new%d", i), time.Second)
		require.NoError(t, err)
	}
	// The 1024th increment sweeps every expired counter.
	assert.Equal(t, 24, store.Len())
}
