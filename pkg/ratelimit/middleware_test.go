package ratelimit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/clientip"
	"github.com/dmitrymomot/subgate/pkg/ratelimit"
	"github.com/dmitrymomot/subgate/pkg/session"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Rejects(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock{t: start.Add(59*time.Second + 200*time.Millisecond)}
	limiter, err := ratelimit.NewFixedWindow(
		ratelimit.NewMemoryStoreWithClock(clk.Now),
		rules(ratelimit.Routes{"login": {Limit: 2, Window: time.Minute}}),
		ratelimit.WithClock(clk.Now),
	)
	require.NoError(t, err)

	h := ratelimit.Middleware(limiter, "login", ratelimit.ByIP(clientip.NewResolver()))(okHandler())

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/login", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	rec = do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"), "sub-second wait rounds up")
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddleware_FailsClosed(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(brokenStore{}, rules(nil))
	require.NoError(t, err)

	called := false
	h := ratelimit.Middleware(limiter, "login", ratelimit.ByIP(clientip.NewResolver()))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, called)
}

func TestMiddleware_UnidentifiedClient(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), rules(nil))
	require.NoError(t, err)

	h := ratelimit.Middleware(limiter, "login", func(*http.Request) string { return "" })(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware_Skip(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(brokenStore{}, rules(nil))
	require.NoError(t, err)

	h := ratelimit.Middleware(limiter, "health", ratelimit.ByIP(clientip.NewResolver()),
		ratelimit.WithSkipFunc(func(*http.Request) bool { return true }),
	)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestByAccount(t *testing.T) {
	t.Parallel()

	fn := ratelimit.ByAccount(clientip.NewResolver())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1"
	assert.Equal(t, "ip:192.0.2.1", fn(req))

	account := uuid.New()
	ctx := session.WithIdentity(context.Background(), session.Identity{AccountID: account})
	assert.Equal(t, "acct:"+account.String(), fn(req.WithContext(ctx)))
}

func TestComposite(t *testing.T) {
	t.Parallel()

	a := func(*http.Request) string { return "a" }
	empty := func(*http.Request) string { return "" }
	long := func(*http.Request) string { return string(make([]byte, 100)) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, "a:a", ratelimit.Composite(a, empty, a)(req))
	assert.Equal(t, "", ratelimit.Composite(empty)(req))
	assert.Len(t, ratelimit.Composite(a, long)(req), 32)
}

func TestRetryAfterSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ratelimit.RetryAfterSeconds(ratelimit.Decision{RetryAfter: 10 * time.Millisecond}))
	assert.Equal(t, 3, ratelimit.RetryAfterSeconds(ratelimit.Decision{RetryAfter: 2100 * time.Millisecond}))
	assert.Equal(t, 60, ratelimit.RetryAfterSeconds(ratelimit.Decision{RetryAfter: time.Minute}))
}
