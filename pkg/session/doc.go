// Package session authenticates API callers by opaque session tokens.
//
// A Manager glues together a token codec and a Store. Login creates a session
// record and seals a token for it; Authenticate is a pure read that verifies
// the token, loads the record and cross-checks the account. Logout revokes a
// single session, LogoutEverywhere revokes every session of an account through
// the store's per-account index.
//
//	┌────────┐  bearer  ┌───────────┐  verify  ┌───────┐
//	│ Client │ ───────► │  Manager  │ ───────► │ Codec │
//	└────────┘          └───────────┘          └───────┘
//	                          │ get / put / revoke
//	                          ▼
//	                    ┌───────────┐
//	                    │   Store   │ (memory, redis)
//	                    └───────────┘
//
// Session expiry is fixed at issue time. Authenticate never extends it. The
// only way to get a later expiry is the explicit Refresh operation, which is
// disabled unless configured and always issues a brand new session.
//
// # Usage
//
//	manager := session.New(codec, session.NewRedisStore(client),
//	    session.WithTTL(24*time.Hour),
//	    session.WithLogger(log),
//	)
//
//	issued, err := manager.Login(ctx, accountID, map[string]string{"device": "cli"})
//
//	r.With(manager.Middleware).Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
//	    id, _ := session.IdentityFromContext(r.Context())
//	    ...
//	})
//
// # Error Handling
//
// Authentication failures are reported as token.ErrInvalidToken,
// token.ErrExpired or ErrSessionNotFound; IsAuthError groups them. A store that
// cannot be reached yields ErrStoreUnavailable, which the middleware maps to
// 503 instead of 401 so an outage never looks like a logout.
package session
