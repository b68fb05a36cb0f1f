package ratelimit

import "time"

// Config holds rate limiter configuration.
type Config struct {
	// Routes overrides rules per route: "refresh=5/1m,webhooks=120/60s".
	Routes Routes `env:"RATELIMIT_ROUTES"`

	// RoutesFile is an optional YAML file with "default" and "routes" keys.
	RoutesFile string `env:"RATELIMIT_ROUTES_FILE"`

	// Default applies to routes without an explicit rule.
	Default Rule `env:"RATELIMIT_DEFAULT" envDefault:"60/1m"`

	// KeyPrefix namespaces counters in the store.
	KeyPrefix string `env:"RATELIMIT_KEY_PREFIX" envDefault:"rl"`

	// OpTimeout bounds a single store call.
	OpTimeout time.Duration `env:"RATELIMIT_OP_TIMEOUT" envDefault:"500ms"`
}
