package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subgate/pkg/logger"
	"github.com/dmitrymomot/subgate/pkg/token"
)

// Codec seals and opens session tokens. *token.Codec satisfies it.
type Codec interface {
	Issue(accountID uuid.UUID, sessionID string, expiresAt time.Time) (string, error)
	Verify(tok string) (token.Claims, error)
}

// Issued is the result of a successful login or refresh.
type Issued struct {
	Token   string
	Session *Session
}

// Manager is the session authenticator.
type Manager struct {
	codec        Codec
	store        Store
	transport    Transport
	config       Config
	logger       *slog.Logger
	now          func() time.Time
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// New creates a session manager. Codec and store are required.
func New(codec Codec, store Store, opts ...Option) *Manager {
	if codec == nil || store == nil {
		// Refuse to start half-configured rather than authenticate nobody at runtime.
		panic("session: codec and store are required")
	}
	m := &Manager{
		codec:  codec,
		store:  store,
		config: DefaultConfig(),
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.transport == nil {
		m.transport = NewHeaderTransport(m.config.HeaderName)
	}
	if m.errorHandler == nil {
		m.errorHandler = defaultErrorHandler
	}
	m.logger = m.logger.With(logger.Component("session"))
	return m
}

// Login creates a session for the account and returns its token.
// The stored entry lives exactly as long as the token.
func (m *Manager) Login(ctx context.Context, accountID uuid.UUID, metadata map[string]string) (Issued, error) {
	if accountID == uuid.Nil {
		return Issued{}, ErrInvalidSession
	}
	now := m.now()
	sess, err := NewSession(accountID, now, m.config.TTL, metadata)
	if err != nil {
		return Issued{}, err
	}
	tok, err := m.codec.Issue(accountID, sess.ID, sess.ExpiresAt)
	if err != nil {
		return Issued{}, err
	}
	if err := m.store.Put(ctx, sess, sess.ExpiresAt.Sub(now)); err != nil {
		return Issued{}, err
	}

	m.logger.InfoContext(ctx, "session created",
		logger.AccountID(accountID),
		logger.SessionID(sess.ID),
	)
	return Issued{Token: tok, Session: sess}, nil
}

// Authenticate resolves a token to an identity. It has no side effects:
// expiry is not extended and nothing is written.
func (m *Manager) Authenticate(ctx context.Context, tok string) (Identity, error) {
	claims, err := m.codec.Verify(tok)
	if err != nil {
		return Identity{}, err
	}

	sess, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return Identity{}, err
	}
	if sess.AccountID != claims.AccountID {
		m.logger.WarnContext(ctx, "session account mismatch",
			logger.SessionID(claims.SessionID),
			logger.AccountID(claims.AccountID),
		)
		return Identity{}, token.ErrInvalidToken
	}
	if !sess.Valid(m.now()) {
		return Identity{}, ErrSessionNotFound
	}

	return Identity{
		AccountID: sess.AccountID,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout revokes the session behind the token. Logging out an expired or
// already revoked session succeeds.
func (m *Manager) Logout(ctx context.Context, tok string) error {
	claims, err := m.codec.Verify(tok)
	if err != nil && !errors.Is(err, token.ErrExpired) {
		return err
	}
	if err := m.store.Revoke(ctx, claims.SessionID); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "session revoked",
		logger.AccountID(claims.AccountID),
		logger.SessionID(claims.SessionID),
	)
	return nil
}

// LogoutEverywhere revokes every session of the account within RevokeTimeout.
// A failure is logged and returned wrapped in ErrRevokePartial; callers are
// expected to report it, not to fail the surrounding request.
func (m *Manager) LogoutEverywhere(ctx context.Context, accountID uuid.UUID) (int, error) {
	if m.config.RevokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.RevokeTimeout)
		defer cancel()
	}

	n, err := m.store.RevokeAllForAccount(ctx, accountID)
	if err != nil {
		m.logger.WarnContext(ctx, "revoke all sessions incomplete",
			logger.AccountID(accountID),
			logger.Error(err),
		)
		return n, errors.Join(ErrRevokePartial, err)
	}

	m.logger.InfoContext(ctx, "all sessions revoked",
		logger.AccountID(accountID),
		slog.Int("count", n),
	)
	return n, nil
}

// Refresh trades a valid token for a new session with a fresh expiry and
// revokes the old one. It must be enabled explicitly.
func (m *Manager) Refresh(ctx context.Context, tok string) (Issued, error) {
	if !m.config.RefreshEnabled {
		return Issued{}, ErrRefreshDisabled
	}
	id, err := m.Authenticate(ctx, tok)
	if err != nil {
		return Issued{}, err
	}
	old, err := m.store.Get(ctx, id.SessionID)
	if err != nil {
		return Issued{}, err
	}

	issued, err := m.Login(ctx, id.AccountID, old.Metadata)
	if err != nil {
		return Issued{}, err
	}
	if err := m.store.Revoke(ctx, id.SessionID); err != nil {
		// The new session is already live; the old one expires on its own.
		m.logger.WarnContext(ctx, "failed to revoke refreshed session",
			logger.SessionID(id.SessionID),
			logger.Error(err),
		)
	}
	return issued, nil
}
