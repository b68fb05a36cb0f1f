package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures the HTTP server. Options panic on invalid values, since
// they are applied once at startup from code or validated configuration.
type Option func(*config)

func positive(name string, d time.Duration, set func(*config, time.Duration)) Option {
	if d <= 0 {
		panic("httpserver: " + name + " must be positive")
	}
	return func(c *config) { set(c, d) }
}

// WithAddr sets the listen address. "127.0.0.1:0" picks a free port, see Server.Addr.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: empty listen address")
	}
	return func(c *config) { c.addr = addr }
}

// WithReadHeaderTimeout bounds reading the request headers.
func WithReadHeaderTimeout(d time.Duration) Option {
	return positive("read header timeout", d, func(c *config, d time.Duration) { c.readHeaderTimeout = d })
}

// WithReadTimeout bounds reading the whole request, body included.
func WithReadTimeout(d time.Duration) Option {
	return positive("read timeout", d, func(c *config, d time.Duration) { c.readTimeout = d })
}

// WithWriteTimeout bounds writing the response.
func WithWriteTimeout(d time.Duration) Option {
	return positive("write timeout", d, func(c *config, d time.Duration) { c.writeTimeout = d })
}

// WithIdleTimeout bounds how long a keep-alive connection waits for the next request.
func WithIdleTimeout(d time.Duration) Option {
	return positive("idle timeout", d, func(c *config, d time.Duration) { c.idleTimeout = d })
}

// WithShutdownTimeout bounds draining in-flight requests on shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return positive("shutdown timeout", d, func(c *config, d time.Duration) { c.shutdownTimeout = d })
}

// WithServer serves through srv. Timeouts already set on it take precedence
// over the configured ones; Handler and BaseContext are overwritten by Run.
func WithServer(srv *http.Server) Option {
	if srv == nil {
		panic("httpserver: nil server")
	}
	return func(c *config) { c.server = srv }
}

// WithLogger sets the server logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStartHook registers a callback that runs once the listener is bound.
func WithStartHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("httpserver: nil start hook")
	}
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook registers a callback that runs after shutdown completes.
func WithStopHook(h func(*slog.Logger)) Option {
	if h == nil {
		panic("httpserver: nil stop hook")
	}
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}
