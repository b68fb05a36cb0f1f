package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind a token.
type Session struct {
	ID        string            `json:"id"`
	AccountID uuid.UUID         `json:"account_id"`
	IssuedAt  time.Time         `json:"issued_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Revoked   bool              `json:"revoked,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewSession creates a session for the account with a random id.
// ExpiresAt is truncated to whole seconds, the precision tokens carry.
func NewSession(accountID uuid.UUID, issuedAt time.Time, ttl time.Duration, metadata map[string]string) (*Session, error) {
	if ttl < time.Second {
		return nil, ErrInvalidTTL
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		AccountID: accountID,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl).Truncate(time.Second),
		Metadata:  maps.Clone(metadata),
	}, nil
}

// IsExpired reports whether the session is past its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return s != nil && !now.Before(s.ExpiresAt)
}

// Valid reports whether the session can authenticate a request at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && !s.Revoked && !s.IsExpired(now)
}

func (s *Session) clone() *Session {
	c := *s
	c.Metadata = maps.Clone(s.Metadata)
	return &c
}

// newID returns 32 random bytes encoded as base64url.
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
