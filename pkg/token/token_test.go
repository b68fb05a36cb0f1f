package token_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/token"
)

const (
	secretA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	secretB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func newCodec(t *testing.T, now func() time.Time, keys ...token.Key) *token.Codec {
	t.Helper()
	if len(keys) == 0 {
		keys = []token.Key{{ID: "k1", Secret: []byte(secretA)}}
	}
	c, err := token.NewCodec(keys, token.WithClock(now))
	require.NoError(t, err)
	return c
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestCodec_IssueVerify(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t, fixedClock(now))
	accountID := uuid.New()
	exp := now.Add(time.Hour)

	tok, err := codec.Issue(accountID, "sess-1", exp)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(tok, "."))

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, accountID, claims.AccountID)
	assert.True(t, exp.Equal(claims.ExpiresAt))
	assert.Equal(t, "k1", claims.KeyID)
}

func TestCodec_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	codec := newCodec(t, func() time.Time { return clock })

	tok, err := codec.Issue(uuid.New(), "sess-1", now.Add(time.Minute))
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"exactly at expiry", now.Add(time.Minute)},
		{"one second after", now.Add(time.Minute + time.Second)},
		{"long after", now.Add(365 * 24 * time.Hour)},
	}
	for _, tt := range tests {
		clock = tt.at
		_, err := codec.Verify(tok)
		assert.ErrorIs(t, err, token.ErrExpired, tt.name)
	}
}

func TestCodec_Tampered(t *testing.T) {
	t.Parallel()

	now := time.Now()
	codec := newCodec(t, fixedClock(now))
	tok, err := codec.Issue(uuid.New(), "sess-1", now.Add(time.Hour))
	require.NoError(t, err)

	payload, sig, _ := strings.Cut(tok, ".")
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	require.NoError(t, err)
	raw[len(raw)/2] ^= 0x01
	forged := base64.RawURLEncoding.EncodeToString(raw) + "." + sig

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", payload},
		{"three parts", tok + ".x"},
		{"bad base64", "!!!." + sig},
		{"short signature", payload + ".AAAA"},
		{"flipped payload byte", forged},
		{"swapped signature", payload + "." + base64.RawURLEncoding.EncodeToString(make([]byte, 32))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			assert.ErrorIs(t, err, token.ErrInvalidToken)
		})
	}
}

func TestCodec_KeyRotation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	old := newCodec(t, fixedClock(now), token.Key{ID: "k1", Secret: []byte(secretA)})
	rotated := newCodec(t, fixedClock(now),
		token.Key{ID: "k2", Secret: []byte(secretB)},
		token.Key{ID: "k1", Secret: []byte(secretA)},
	)
	retired := newCodec(t, fixedClock(now), token.Key{ID: "k2", Secret: []byte(secretB)})

	oldTok, err := old.Issue(uuid.New(), "sess-old", now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := rotated.Verify(oldTok)
	require.NoError(t, err)
	assert.Equal(t, "k1", claims.KeyID)

	newTok, err := rotated.Issue(uuid.New(), "sess-new", now.Add(time.Hour))
	require.NoError(t, err)
	claims, err = rotated.Verify(newTok)
	require.NoError(t, err)
	assert.Equal(t, "k2", claims.KeyID)

	_, err = retired.Verify(oldTok)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestNewCodec_Errors(t *testing.T) {
	t.Parallel()

	_, err := token.NewCodec(nil)
	assert.ErrorIs(t, err, token.ErrNoKeys)

	_, err = token.NewCodec(token.KeyRing{{ID: "k1", Secret: []byte("short")}})
	assert.ErrorIs(t, err, token.ErrInvalidKey)
}

func TestParseKeyRing(t *testing.T) {
	t.Parallel()

	ring, err := token.ParseKeyRing("k2:" + secretB + ", k1:" + secretA)
	require.NoError(t, err)
	require.Len(t, ring, 2)
	assert.Equal(t, "k2", ring[0].ID)
	assert.Equal(t, []byte(secretB), ring[0].Secret)

	_, err = token.ParseKeyRing("")
	assert.ErrorIs(t, err, token.ErrNoKeys)

	_, err = token.ParseKeyRing("no-separator")
	assert.ErrorIs(t, err, token.ErrInvalidKey)

	_, err = token.ParseKeyRing("k1:" + secretA + ",k1:" + secretB)
	assert.ErrorIs(t, err, token.ErrInvalidKey)
}

func TestCodec_IssueRejectsEmptyIdentity(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, time.Now)
	_, err := codec.Issue(uuid.Nil, "sess", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	_, err = codec.Issue(uuid.New(), "", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
