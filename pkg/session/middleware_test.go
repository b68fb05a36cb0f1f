package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/session"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m, _, _ := newManager(t)
	account := uuid.New()
	issued, err := m.Login(context.Background(), account, nil)
	require.NoError(t, err)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.IdentityFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, account, id.AccountID)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid bearer", "Bearer " + issued.Token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + issued.Token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + issued.Token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMiddleware_StoreOutageIs503(t *testing.T) {
	t.Parallel()

	base, _, _ := newManager(t)
	issued, err := base.Login(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	m := session.New(tokenCodec(t, func() time.Time { return issued.Session.IssuedAt }), failingStore{err: errors.Join(session.ErrStoreUnavailable, errors.New("down"))})

	called := false
	handler := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, called)
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusOK, session.StatusCode(nil))
	assert.Equal(t, http.StatusUnauthorized, session.StatusCode(session.ErrSessionNotFound))
	assert.Equal(t, http.StatusUnauthorized, session.StatusCode(session.ErrNoToken))
	assert.Equal(t, http.StatusServiceUnavailable, session.StatusCode(session.ErrStoreUnavailable))
	assert.Equal(t, http.StatusNotFound, session.StatusCode(session.ErrRefreshDisabled))
}

func TestHeaderTransport(t *testing.T) {
	t.Parallel()

	tr := session.NewHeaderTransport("X-Session", session.WithHeaderPrefix(""))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session", "  abc  ")
	tok, err := tr.GetToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = tr.GetToken(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, session.ErrNoToken)
}
