package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	value     int64
	expiresAt time.Time
}

// MemoryStore keeps counters in process memory. It is only correct for a
// single instance and is meant for tests and local development.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
	ops      int
}

// sweepEvery is the number of increments between sweeps of expired counters.
const sweepEvery = 1024

// NewMemoryStore creates an in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an in-memory store with a custom time source.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		counters: make(map[string]*counter),
		now:      now,
	}
}

func (m *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	if key == "" {
		return 0, ErrKeyRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.ops++
	if m.ops%sweepEvery == 0 {
		for k, c := range m.counters {
			if !now.Before(c.expiresAt) {
				delete(m.counters, k)
			}
		}
	}

	c, ok := m.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &counter{expiresAt: now.Add(ttl)}
		m.counters[key] = c
	}
	c.value++
	return c.value, nil
}

// Len returns the number of live and not yet swept counters.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters)
}
