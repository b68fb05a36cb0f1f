// Package webhook receives billing provider webhooks and feeds them to the
// subscription ledger.
//
// A Provider authenticates the raw request body before parsing anything and
// translates the payload into a subscription.Event. LemonSqueezy signs bodies
// with a hex HMAC-SHA256 in X-Signature; Paddle signatures are checked with
// the Paddle SDK verifier. The Processor applies events through the ledger and
// decides what may be acknowledged:
//
//	unrecognized event      acknowledged, not applied
//	duplicate, stale, ...   acknowledged, logged as ignored
//	store fault             ErrProcessing, the provider redelivers
//
// Handler ties both together for one endpoint:
//
//	ls, _ := webhook.NewLemonSqueezy(cfg.LemonSqueezySecret)
//	proc := webhook.NewProcessor(ledger, webhook.WithProcessorLogger(log))
//	r.Post("/webhooks/lemonsqueezy", webhook.Handler(ls, proc).ServeHTTP)
//
// Sign and SignPaddle produce valid signatures for fixtures and local tools.
package webhook
