package logger

import "log/slog"

// Config is the environment-driven logger configuration.
type Config struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"subgate"`
	Level   string `env:"LOG_LEVEL"`
}

// NewFromConfig creates a logger for the configured environment. An explicit
// level overrides the environment default.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	base := []Option{WithEnvironment(cfg.Env, cfg.Service)}
	if cfg.Level != "" {
		base = append(base, WithLevelName(cfg.Level))
	}
	return New(append(base, opts...)...)
}
