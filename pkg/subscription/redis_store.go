package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// createScript inserts a subscription unless its event id was recorded or the
// record exists. Returns -1 duplicate event, 0 conflict, 1 created.
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[3]) == 1 then return -1 end
if redis.call("EXISTS", KEYS[1]) == 1 then return 0 end
redis.call("HSET", KEYS[1], "rev", ARGV[2], "data", ARGV[1])
redis.call("SET", KEYS[2], ARGV[3])
redis.call("SET", KEYS[3], "1", "PX", ARGV[4])
return 1
`)

// updateScript replaces the record when its revision matches. Returns -2
// missing, -1 duplicate event, 0 conflict, 1 updated.
var updateScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then return -1 end
local cur = redis.call("HGET", KEYS[1], "rev")
if not cur then return -2 end
if cur ~= ARGV[3] then return 0 end
redis.call("HSET", KEYS[1], "rev", ARGV[2], "data", ARGV[1])
redis.call("SET", KEYS[2], "1", "PX", ARGV[4])
return 1
`)

// RedisStore implements Store on top of Redis.
//
// Layout:
//
//	{prefix}:sub:{providerSubID}   hash {rev, data}
//	{prefix}:acct:{accountID}      provider subscription id
//	{prefix}:evt:{eventID}         applied marker, PX = retention
//
// All keys of one write are touched by a single script, so the store needs a
// standalone or sentinel deployment rather than a cluster.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	opTimeout time.Duration
	retention time.Duration
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the key namespace. Defaults to "ledger".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithOpTimeout bounds every store call. Defaults to 500ms.
func WithOpTimeout(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// WithEventRetention sets how long applied event ids are remembered.
// Defaults to 30 days.
func WithEventRetention(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewRedisStore creates a Redis-backed ledger store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		prefix:    "ledger",
		opTimeout: 500 * time.Millisecond,
		retention: 720 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) subKey(id string) string {
	return s.prefix + ":sub:" + id
}

func (s *RedisStore) accountKey(accountID uuid.UUID) string {
	return s.prefix + ":acct:" + accountID.String()
}

func (s *RedisStore) eventKey(id string) string {
	return s.prefix + ":evt:" + id
}

func (s *RedisStore) Get(ctx context.Context, providerSubID string) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.get(ctx, providerSubID)
}

func (s *RedisStore) get(ctx context.Context, providerSubID string) (*Subscription, error) {
	data, err := s.client.HGet(ctx, s.subKey(providerSubID), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, errors.Join(ErrInvalidSubscription, err)
	}
	return &sub, nil
}

func (s *RedisStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	id, err := s.client.Get(ctx, s.accountKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return s.get(ctx, id)
}

func (s *RedisStore) EventApplied(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	n, err := s.client.Exists(ctx, s.eventKey(eventID)).Result()
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Create(ctx context.Context, sub *Subscription) error {
	if err := sub.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return errors.Join(ErrInvalidSubscription, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	keys := []string{s.subKey(sub.ProviderSubID), s.accountKey(sub.AccountID), s.eventKey(sub.LastEventID)}
	res, err := createScript.Run(ctx, s.client, keys,
		data, sub.Revision().String(), sub.ProviderSubID, s.retentionMillis(),
	).Int()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	switch res {
	case -1:
		return ErrDuplicateEvent
	case 0:
		return ErrConflict
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, sub *Subscription, prev Revision) error {
	if err := sub.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return errors.Join(ErrInvalidSubscription, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	keys := []string{s.subKey(sub.ProviderSubID), s.eventKey(sub.LastEventID)}
	res, err := updateScript.Run(ctx, s.client, keys,
		data, sub.Revision().String(), prev.String(), s.retentionMillis(),
	).Int()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	switch res {
	case -2:
		return ErrSubscriptionNotFound
	case -1:
		return ErrDuplicateEvent
	case 0:
		return ErrConflict
	}
	return nil
}

func (s *RedisStore) retentionMillis() string {
	return strconv.FormatInt(s.retention.Milliseconds(), 10)
}
