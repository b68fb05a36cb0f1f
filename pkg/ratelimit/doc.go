// Package ratelimit enforces per-route request limits with fixed windows.
//
// Every route has a Rule: at most Limit requests per Window for one client.
// Time is cut into windows of that length; the counter for
//
//	(route, client, floor(now / window))
//
// is incremented atomically in a shared Store and expires with the window.
// A request is allowed while the counter stays at or below Limit. A rejected
// request carries RetryAfter, the time left until the window rolls over.
//
// Fixed windows allow up to twice the limit in a short burst straddling a
// boundary. That is accepted; in exchange a check is a single INCR.
//
// # Usage
//
//	rules, err := ratelimit.LoadRules(cfg)
//	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewRedisStore(client), rules)
//
//	r.With(ratelimit.Middleware(limiter, "login", ratelimit.ByIP(resolver))).
//	    Post("/v1/login", loginHandler)
//
// # Failure policy
//
// The limiter fails closed. When the store cannot be reached Allow returns
// ErrStoreUnavailable and the middleware answers 503 rather than letting the
// request through unmetered.
package ratelimit
