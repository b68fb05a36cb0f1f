package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/subgate/pkg/clientip"
	"github.com/dmitrymomot/subgate/pkg/httpserver"
	"github.com/dmitrymomot/subgate/pkg/logger"
	"github.com/dmitrymomot/subgate/pkg/ratelimit"
	"github.com/dmitrymomot/subgate/pkg/requestid"
	"github.com/dmitrymomot/subgate/pkg/session"
	"github.com/dmitrymomot/subgate/pkg/subscription"
	"github.com/dmitrymomot/subgate/pkg/webhook"
)

// Rate limit route ids. Rules are configured per id.
const (
	routeWebhooks = "webhooks"
	routeAPI      = "api"
	routeRefresh  = "refresh"
)

type server struct {
	log          *slog.Logger
	sessions     *session.Manager
	ledger       *subscription.Ledger
	limiter      ratelimit.Limiter
	resolver     *clientip.Resolver
	providers    []webhook.Provider
	processor    *webhook.Processor
	maxBodyBytes int64
	checks       httpserver.Checks
	readiness    time.Duration
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(s.resolver.Middleware)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(s.log, s.readiness, s.checks))

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(ratelimit.Middleware(s.limiter, routeWebhooks, ratelimit.ByIP(s.resolver)))
		for _, p := range s.providers {
			r.Method(http.MethodPost, "/"+p.Name(), webhook.Handler(p, s.processor,
				webhook.WithMaxBodyBytes(s.maxBodyBytes),
				webhook.WithHandlerLogger(s.log),
			))
		}
	})

	r.Route("/v1", func(r chi.Router) {
		// Anonymous and forged tokens are counted per address before the
		// session lookup; authenticated callers also get a per-account budget.
		r.Use(ratelimit.Middleware(s.limiter, routeAPI, ratelimit.ByIP(s.resolver)))
		r.Use(s.sessions.Middleware)
		r.Use(ratelimit.Middleware(s.limiter, routeAPI, ratelimit.ByAccount(s.resolver)))

		r.Get("/me", s.handleMe)
		r.Get("/entitlement", s.handleEntitlement)
		r.Delete("/sessions/current", s.handleLogout)
		r.Delete("/sessions", s.handleLogoutEverywhere)
		r.With(ratelimit.Middleware(s.limiter, routeRefresh, ratelimit.ByAccount(s.resolver))).
			Post("/sessions/refresh", s.handleRefresh)
	})

	return r
}

type meResponse struct {
	AccountID string    `json:"account_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{
		AccountID: id.AccountID.String(),
		SessionID: id.SessionID,
		ExpiresAt: id.ExpiresAt,
	})
}

func (s *server) handleEntitlement(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	ent, err := s.ledger.Entitlement(r.Context(), id.AccountID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "entitlement lookup failed",
			logger.AccountID(id.AccountID),
			logger.Error(err),
		)
		writeError(w, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	tok, err := s.sessions.Token(r)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	if err := s.sessions.Logout(r.Context(), tok); err != nil {
		writeAuthError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type revokeResponse struct {
	Revoked  int  `json:"revoked"`
	Complete bool `json:"complete"`
}

// handleLogoutEverywhere reports a partial revocation instead of failing.
func (s *server) handleLogoutEverywhere(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IdentityFromContext(r.Context())
	n, err := s.sessions.LogoutEverywhere(r.Context(), id.AccountID)
	writeJSON(w, http.StatusOK, revokeResponse{Revoked: n, Complete: err == nil})
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tok, err := s.sessions.Token(r)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	issued, err := s.sessions.Refresh(r.Context(), tok)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: issued.Token, ExpiresAt: issued.Session.ExpiresAt})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeAuthError(w http.ResponseWriter, _ *http.Request, err error) {
	code := session.StatusCode(err)
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeError(w, code)
}

func writeError(w http.ResponseWriter, code int) {
	writeJSON(w, code, errorResponse{Error: http.StatusText(code)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
