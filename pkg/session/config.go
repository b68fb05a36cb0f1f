package session

import "time"

// Config holds session configuration.
type Config struct {
	// TTL is the lifetime of a new session. Expiry never moves after issue.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// OpTimeout bounds a single store call.
	OpTimeout time.Duration `env:"SESSION_OP_TIMEOUT" envDefault:"500ms"`

	// RevokeTimeout bounds LogoutEverywhere.
	RevokeTimeout time.Duration `env:"SESSION_REVOKE_TIMEOUT" envDefault:"2s"`

	// RefreshEnabled turns on the explicit Refresh operation.
	RefreshEnabled bool `env:"SESSION_REFRESH_ENABLED" envDefault:"false"`

	// KeyPrefix namespaces session keys in Redis.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"sess"`

	// HeaderName is the request header carrying the bearer token.
	HeaderName string `env:"SESSION_HEADER" envDefault:"Authorization"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           30 * 24 * time.Hour,
		OpTimeout:     500 * time.Millisecond,
		RevokeTimeout: 2 * time.Second,
		KeyPrefix:     "sess",
		HeaderName:    "Authorization",
	}
}

// NewFromConfig creates a Manager from the provided Config.
func NewFromConfig(cfg Config, codec Codec, store Store, opts ...Option) *Manager {
	return New(codec, store, append([]Option{WithConfig(cfg)}, opts...)...)
}
