package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory. Intended for tests and
// single-instance development.
type MemoryStore struct {
	mu       sync.Mutex
	subs     map[string]*Subscription
	accounts map[uuid.UUID]string
	events   map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs:     make(map[string]*Subscription),
		accounts: make(map[uuid.UUID]string),
		events:   make(map[string]struct{}),
	}
}

func (m *MemoryStore) Get(_ context.Context, providerSubID string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[providerSubID]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return sub.clone(), nil
}

func (m *MemoryStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	m.mu.Lock()
	id, ok := m.accounts[accountID]
	m.mu.Unlock()

	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return m.Get(ctx, id)
}

func (m *MemoryStore) EventApplied(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.events[eventID]
	return ok, nil
}

func (m *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	if err := sub.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[sub.LastEventID]; ok {
		return ErrDuplicateEvent
	}
	if _, ok := m.subs[sub.ProviderSubID]; ok {
		return ErrConflict
	}
	m.subs[sub.ProviderSubID] = sub.clone()
	m.accounts[sub.AccountID] = sub.ProviderSubID
	m.events[sub.LastEventID] = struct{}{}
	return nil
}

func (m *MemoryStore) Update(_ context.Context, sub *Subscription, prev Revision) error {
	if err := sub.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[sub.LastEventID]; ok {
		return ErrDuplicateEvent
	}
	cur, ok := m.subs[sub.ProviderSubID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if cur.LastEventID != prev.EventID || !cur.LastEventAt.Equal(prev.At) {
		return ErrConflict
	}
	m.subs[sub.ProviderSubID] = sub.clone()
	m.events[sub.LastEventID] = struct{}{}
	return nil
}

// Len returns the number of stored subscriptions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
