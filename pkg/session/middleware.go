package session

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/subgate/pkg/logger"
)

// Middleware authenticates the request and stores the Identity in its context.
// Authentication failures answer 401, store outages answer 503.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := m.transport.GetToken(r)
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		id, err := m.Authenticate(r.Context(), tok)
		if err != nil {
			if !IsAuthError(err) {
				m.logger.ErrorContext(r.Context(), "authentication failed", logger.Error(err))
			}
			m.errorHandler(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Token returns the raw token of the request using the manager's transport.
func (m *Manager) Token(r *http.Request) (string, error) {
	return m.transport.GetToken(r)
}

// StatusCode maps an authentication error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsAuthError(err):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRefreshDisabled):
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	code := StatusCode(err)
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer`)
	}
	http.Error(w, http.StatusText(code), code)
}
