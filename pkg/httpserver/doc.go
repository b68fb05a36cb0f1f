// Package httpserver wraps net/http with context-driven graceful shutdown,
// environment-based timeouts, lifecycle hooks and health probe handlers.
//
// Run binds the listener, serves until the supplied context is cancelled and
// then drains in-flight requests within the shutdown timeout. Signal handling
// belongs to the caller, typically through signal.NotifyContext:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.LivenessHandler())
//	r.Get("/readyz", httpserver.ReadinessHandler(log, 2*time.Second, httpserver.Checks{
//		"redis": redis.Healthcheck(client),
//	}))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen and serve failures are wrapped with ErrStart, shutdown failures with
// ErrShutdown.
package httpserver
