package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/session"
)

type storeFactory func(t *testing.T) (session.Store, func(time.Duration))

func memoryFactory(t *testing.T) (session.Store, func(time.Duration)) {
	t.Helper()
	now := time.Now()
	store := session.NewMemoryStoreWithClock(func() time.Time { return now })
	return store, func(d time.Duration) { now = now.Add(d) }
}

func redisFactory(t *testing.T) (session.Store, func(time.Duration)) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	now := time.Now()
	store := session.NewRedisStore(client, session.WithStoreClock(func() time.Time { return now }))
	return store, func(d time.Duration) {
		now = now.Add(d)
		mr.FastForward(d)
	}
}

var factories = map[string]storeFactory{
	"memory": memoryFactory,
	"redis":  redisFactory,
}

func newTestSession(t *testing.T, accountID uuid.UUID, ttl time.Duration) *session.Session {
	t.Helper()
	sess, err := session.NewSession(accountID, time.Now(), ttl, map[string]string{"device": "test"})
	require.NoError(t, err)
	return sess
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, _ := factory(t)
			ctx := context.Background()
			sess := newTestSession(t, uuid.New(), time.Hour)

			require.NoError(t, store.Put(ctx, sess, time.Hour))

			got, err := store.Get(ctx, sess.ID)
			require.NoError(t, err)
			assert.Equal(t, sess.ID, got.ID)
			assert.Equal(t, sess.AccountID, got.AccountID)
			assert.Equal(t, "test", got.Metadata["device"])
			assert.False(t, got.Revoked)

			_, err = store.Get(ctx, "missing")
			assert.ErrorIs(t, err, session.ErrSessionNotFound)
		})
	}
}

func TestStore_PutValidation(t *testing.T) {
	t.Parallel()
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, _ := factory(t)
			ctx := context.Background()

			assert.ErrorIs(t, store.Put(ctx, nil, time.Hour), session.ErrInvalidSession)
			assert.ErrorIs(t, store.Put(ctx, newTestSession(t, uuid.New(), time.Hour), 0), session.ErrInvalidTTL)
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, advance := factory(t)
			ctx := context.Background()
			sess := newTestSession(t, uuid.New(), time.Minute)
			require.NoError(t, store.Put(ctx, sess, time.Minute))

			advance(2 * time.Minute)

			_, err := store.Get(ctx, sess.ID)
			assert.ErrorIs(t, err, session.ErrSessionNotFound)
		})
	}
}

func TestStore_Revoke(t *testing.T) {
	t.Parallel()
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, _ := factory(t)
			ctx := context.Background()
			sess := newTestSession(t, uuid.New(), time.Hour)
			require.NoError(t, store.Put(ctx, sess, time.Hour))

			require.NoError(t, store.Revoke(ctx, sess.ID))
			_, err := store.Get(ctx, sess.ID)
			assert.ErrorIs(t, err, session.ErrSessionNotFound)

			// idempotent
			require.NoError(t, store.Revoke(ctx, sess.ID))
			require.NoError(t, store.Revoke(ctx, "missing"))
		})
	}
}

func TestStore_RevokeAllForAccount(t *testing.T) {
	t.Parallel()
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, _ := factory(t)
			ctx := context.Background()
			account := uuid.New()
			other := uuid.New()

			var mine []*session.Session
			for range 3 {
				s := newTestSession(t, account, time.Hour)
				require.NoError(t, store.Put(ctx, s, time.Hour))
				mine = append(mine, s)
			}
			foreign := newTestSession(t, other, time.Hour)
			require.NoError(t, store.Put(ctx, foreign, time.Hour))

			n, err := store.RevokeAllForAccount(ctx, account)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			for _, s := range mine {
				_, err := store.Get(ctx, s.ID)
				assert.ErrorIs(t, err, session.ErrSessionNotFound)
			}
			_, err = store.Get(ctx, foreign.ID)
			assert.NoError(t, err)

			n, err = store.RevokeAllForAccount(ctx, account)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestRedisStore_KeyLayout(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewRedisStore(client, session.WithKeyPrefix("test"))
	ctx := context.Background()

	sess := newTestSession(t, uuid.New(), time.Hour)
	require.NoError(t, store.Put(ctx, sess, 30*time.Minute))

	assert.True(t, mr.Exists("test:"+sess.ID))
	ttl := mr.TTL("test:" + sess.ID)
	assert.Equal(t, 30*time.Minute, ttl)

	members, err := mr.Members("test:acct:" + sess.AccountID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{sess.ID}, members)

	// Index expiry only grows.
	short := newTestSession(t, sess.AccountID, time.Hour)
	require.NoError(t, store.Put(ctx, short, time.Minute))
	assert.Equal(t, 30*time.Minute, mr.TTL("test:acct:"+sess.AccountID.String()))

	require.NoError(t, store.Revoke(ctx, sess.ID))
	members, err = mr.Members("test:acct:" + sess.AccountID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{short.ID}, members)
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewRedisStore(client, session.WithOpTimeout(100*time.Millisecond))
	mr.Close()

	ctx := context.Background()
	_, err := store.Get(ctx, "any")
	assert.ErrorIs(t, err, session.ErrStoreUnavailable)
	assert.False(t, session.IsAuthError(err))

	err = store.Put(ctx, newTestSession(t, uuid.New(), time.Hour), time.Hour)
	assert.ErrorIs(t, err, session.ErrStoreUnavailable)

	_, err = store.RevokeAllForAccount(ctx, uuid.New())
	assert.ErrorIs(t, err, session.ErrStoreUnavailable)
}
