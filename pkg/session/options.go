package session

import (
	"log/slog"
	"net/http"
	"time"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.config = cfg
	}
}

// WithTTL sets the lifetime of new sessions.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.config.TTL = ttl
	}
}

// WithRevokeTimeout bounds LogoutEverywhere.
func WithRevokeTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.config.RevokeTimeout = d
	}
}

// WithRefresh enables or disables the Refresh operation.
func WithRefresh(enabled bool) Option {
	return func(m *Manager) {
		m.config.RefreshEnabled = enabled
	}
}

// WithTransport sets how tokens are read from requests.
func WithTransport(t Transport) Option {
	return func(m *Manager) {
		m.transport = t
	}
}

// WithLogger sets the logger. Tokens are never logged.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithErrorHandler customizes the middleware's error responses.
func WithErrorHandler(h func(w http.ResponseWriter, r *http.Request, err error)) Option {
	return func(m *Manager) {
		if h != nil {
			m.errorHandler = h
		}
	}
}
