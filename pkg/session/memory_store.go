package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory. Expired entries are evicted
// lazily on access. Intended for tests and single-instance development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	accounts map[uuid.UUID]map[string]struct{}
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		accounts: make(map[uuid.UUID]map[string]struct{}),
		now:      time.Now,
	}
}

// NewMemoryStoreWithClock creates an in-memory store with a custom time source.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	if now != nil {
		s.now = now
	}
	return s
}

func (m *MemoryStore) Put(_ context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sess.ID] = sess.clone()
	idx, ok := m.accounts[sess.AccountID]
	if !ok {
		idx = make(map[string]struct{})
		m.accounts[sess.AccountID] = idx
	}
	idx[sess.ID] = struct{}{}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	var c *Session
	if ok {
		c = sess.clone()
	}
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if c.IsExpired(m.now()) {
		m.mu.Lock()
		if cur, ok := m.sessions[id]; ok && cur == sess {
			m.remove(sess)
		}
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if c.Revoked {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Revoke keeps a revoked tombstone until the session would have expired.
func (m *MemoryStore) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		sess.Revoked = true
	}
	return nil
}

func (m *MemoryStore) RevokeAllForAccount(_ context.Context, accountID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for id := range m.accounts[accountID] {
		sess, ok := m.sessions[id]
		if !ok || sess.Revoked {
			continue
		}
		sess.Revoked = true
		n++
	}
	return n, nil
}

// Len returns the number of stored entries including tombstones.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// remove must be called with the write lock held.
func (m *MemoryStore) remove(sess *Session) {
	delete(m.sessions, sess.ID)
	if idx, ok := m.accounts[sess.AccountID]; ok {
		delete(idx, sess.ID)
		if len(idx) == 0 {
			delete(m.accounts, sess.AccountID)
		}
	}
}
