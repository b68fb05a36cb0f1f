package mongo

import "errors"

var (
	// ErrEmptyConnectionURL is returned when MONGODB_URL is not set.
	ErrEmptyConnectionURL = errors.New("mongo: empty connection URL")
	// ErrConnect wraps the last connection or ping failure.
	ErrConnect = errors.New("mongo: failed to connect")
	// ErrUnhealthy is returned by the readiness probe.
	ErrUnhealthy = errors.New("mongo: healthcheck failed")
)
