package webhook

import "errors"

// Handlers map these to HTTP statuses: ErrSignatureMismatch to 401,
// ErrMalformedPayload to 400, ErrPayloadTooLarge to 413 and ErrProcessing to
// 500 so that the provider redelivers.
var (
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
	ErrMalformedPayload  = errors.New("malformed webhook payload")
	ErrPayloadTooLarge   = errors.New("webhook payload too large")
	ErrProcessing        = errors.New("webhook processing failed")
	ErrMissingSecret     = errors.New("webhook secret is required")
)
