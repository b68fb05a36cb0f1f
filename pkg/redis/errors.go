package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned when REDIS_URL is not set.
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")
	// ErrInvalidURL wraps redis.ParseURL failures.
	ErrInvalidURL = errors.New("redis: invalid connection URL")
	// ErrNotReady means the server did not answer a ping before the attempts ran out.
	ErrNotReady = errors.New("redis: server not ready")
	// ErrUnhealthy is returned by the readiness probe.
	ErrUnhealthy = errors.New("redis: healthcheck failed")
)
