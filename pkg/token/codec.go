package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Claims is the verified content of a token.
type Claims struct {
	SessionID string
	AccountID uuid.UUID
	ExpiresAt time.Time
	KeyID     string
}

type payload struct {
	SessionID string    `json:"sid"`
	AccountID uuid.UUID `json:"aid"`
	ExpiresAt int64     `json:"exp"`
	KeyID     string    `json:"kid"`
}

type derivedKey struct {
	id  string
	mac []byte
}

// Codec seals and opens session tokens. It is safe for concurrent use.
type Codec struct {
	keys []derivedKey
	now  func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec derives MAC keys for every entry of the ring.
// The first key is used to seal new tokens.
func NewCodec(ring KeyRing, opts ...Option) (*Codec, error) {
	if len(ring) == 0 {
		return nil, ErrNoKeys
	}
	c := &Codec{
		keys: make([]derivedKey, 0, len(ring)),
		now:  time.Now,
	}
	for _, k := range ring {
		mac, err := deriveKey(k)
		if err != nil {
			return nil, err
		}
		c.keys = append(c.keys, derivedKey{id: k.ID, mac: mac})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue seals a token for the session with the newest key.
func (c *Codec) Issue(accountID uuid.UUID, sessionID string, expiresAt time.Time) (string, error) {
	if sessionID == "" || accountID == uuid.Nil {
		return "", ErrInvalidToken
	}
	k := c.keys[0]
	data, err := json.Marshal(payload{
		SessionID: sessionID,
		AccountID: accountID,
		ExpiresAt: expiresAt.Unix(),
		KeyID:     k.id,
	})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(sign(k.mac, data)), nil
}

// Verify checks the token's structure, signature and expiry.
// It returns ErrInvalidToken for anything that does not verify and ErrExpired
// for a well-formed token whose expiry has passed.
func (c *Codec) Verify(tok string) (Claims, error) {
	encPayload, encSig, ok := strings.Cut(tok, ".")
	if !ok || encPayload == "" || encSig == "" || strings.Contains(encSig, ".") {
		return Claims{}, ErrInvalidToken
	}
	data, err := base64.RawURLEncoding.DecodeString(encPayload)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil || len(sig) != sha256.Size {
		return Claims{}, ErrInvalidToken
	}

	// Signature is checked before the payload is decoded.
	k, ok := c.match(data, sig)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if p.SessionID == "" || p.AccountID == uuid.Nil || p.KeyID != k.id {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{
		SessionID: p.SessionID,
		AccountID: p.AccountID,
		ExpiresAt: time.Unix(p.ExpiresAt, 0),
		KeyID:     p.KeyID,
	}
	if !c.now().Before(claims.ExpiresAt) {
		return claims, ErrExpired
	}
	return claims, nil
}

// match tries every key newest first and returns the one whose MAC matches.
func (c *Codec) match(data, sig []byte) (derivedKey, bool) {
	for _, k := range c.keys {
		if hmac.Equal(sig, sign(k.mac, data)) {
			return k, true
		}
	}
	return derivedKey{}, false
}

func sign(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
