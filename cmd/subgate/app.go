package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/subgate/pkg/clientip"
	"github.com/dmitrymomot/subgate/pkg/config"
	"github.com/dmitrymomot/subgate/pkg/httpserver"
	"github.com/dmitrymomot/subgate/pkg/logger"
	"github.com/dmitrymomot/subgate/pkg/mongo"
	"github.com/dmitrymomot/subgate/pkg/pg"
	"github.com/dmitrymomot/subgate/pkg/ratelimit"
	"github.com/dmitrymomot/subgate/pkg/redis"
	"github.com/dmitrymomot/subgate/pkg/requestid"
	"github.com/dmitrymomot/subgate/pkg/session"
	"github.com/dmitrymomot/subgate/pkg/subscription"
	"github.com/dmitrymomot/subgate/pkg/token"
	"github.com/dmitrymomot/subgate/pkg/webhook"
)

// Backends for the session and rate limit key-value state.
const (
	kvRedis  = "redis"
	kvMemory = "memory"
)

type appConfig struct {
	KVBackend string `env:"KV_BACKEND" envDefault:"redis"`

	// PruneInterval is how often the postgres ledger drops expired event ids.
	PruneInterval time.Duration `env:"LEDGER_PRUNE_INTERVAL" envDefault:"1h"`
}

// app owns every long-lived dependency of the process.
type app struct {
	log    *slog.Logger
	cfg    appConfig
	http   httpserver.Config
	ledCfg subscription.Config
	pgCfg  pg.Config

	redis   *goredis.Client
	pgPool  *pgxpool.Pool
	mongo   *mongodriver.Client
	pgStore *subscription.PostgresStore

	srv *server
}

func loadLogger() (*slog.Logger, error) {
	var cfg logger.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return logger.NewFromConfig(cfg, logger.WithContextExtractors(requestid.LoggerExtractor())), nil
}

// newApp connects the configured backends and assembles the HTTP server.
// Close must be called on every returned app, including on later errors.
func newApp(ctx context.Context, log *slog.Logger) (*app, error) {
	a := &app{log: log}

	var (
		tokCfg  token.Config
		sessCfg session.Config
		rlCfg   ratelimit.Config
		whCfg   webhook.Config
		ipCfg   clientip.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&a.cfg) },
		func() error { return config.Load(&a.http) },
		func() error { return config.Load(&a.ledCfg) },
		func() error { return config.Load(&tokCfg) },
		func() error { return config.Load(&sessCfg) },
		func() error { return config.Load(&rlCfg) },
		func() error { return config.Load(&whCfg) },
		func() error { return config.Load(&ipCfg) },
	} {
		if err := load(); err != nil {
			return a, err
		}
	}

	checks := httpserver.Checks{}

	if a.cfg.KVBackend == kvRedis || a.ledCfg.Backend == subscription.BackendRedis {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return a, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return a, err
		}
		a.redis = client
		checks["redis"] = redis.Healthcheck(client)
	}

	ledgerStore, err := a.openLedgerStore(ctx, checks)
	if err != nil {
		return a, err
	}

	var (
		sessStore session.Store
		rlStore   ratelimit.Store
	)
	switch a.cfg.KVBackend {
	case kvRedis:
		sessStore = session.NewRedisStore(a.redis,
			session.WithKeyPrefix(sessCfg.KeyPrefix),
			session.WithOpTimeout(sessCfg.OpTimeout),
		)
		rlStore = ratelimit.NewRedisStore(a.redis, rlCfg.OpTimeout)
	case kvMemory:
		log.WarnContext(ctx, "sessions and rate limits are kept in memory and not shared between instances")
		sessStore = session.NewMemoryStore()
		rlStore = ratelimit.NewMemoryStore()
	default:
		return a, fmt.Errorf("unknown key-value backend %q", a.cfg.KVBackend)
	}

	codec, err := token.NewCodec(tokCfg.SigningKeys)
	if err != nil {
		return a, err
	}
	rules, err := ratelimit.LoadRules(rlCfg)
	if err != nil {
		return a, err
	}
	limiter, err := ratelimit.NewFixedWindow(rlStore, rules,
		ratelimit.WithKeyPrefix(rlCfg.KeyPrefix),
		ratelimit.WithLogger(log),
	)
	if err != nil {
		return a, err
	}
	providers, err := whCfg.Providers()
	if err != nil {
		return a, err
	}
	if len(providers) == 0 {
		log.WarnContext(ctx, "no webhook secrets configured, billing webhooks are not mounted")
	}

	ledger := subscription.NewFromConfig(a.ledCfg, ledgerStore, subscription.WithLogger(log))

	a.srv = &server{
		log:          log,
		sessions:     session.NewFromConfig(sessCfg, codec, sessStore, session.WithLogger(log), session.WithErrorHandler(writeAuthError)),
		ledger:       ledger,
		limiter:      limiter,
		resolver:     clientip.NewFromConfig(ipCfg),
		providers:    providers,
		processor:    webhook.NewProcessor(ledger, webhook.WithProcessorLogger(log)),
		maxBodyBytes: whCfg.MaxBodyBytes,
		checks:       checks,
		readiness:    a.http.ReadinessTimeout,
	}
	return a, nil
}

func (a *app) openLedgerStore(ctx context.Context, checks httpserver.Checks) (subscription.Store, error) {
	switch a.ledCfg.Backend {
	case subscription.BackendMemory:
		a.log.WarnContext(ctx, "subscription ledger is kept in memory and lost on restart")
		return subscription.NewMemoryStore(), nil

	case subscription.BackendRedis:
		return subscription.NewRedisStore(a.redis,
			subscription.WithKeyPrefix(a.ledCfg.KeyPrefix),
			subscription.WithOpTimeout(a.ledCfg.OpTimeout),
			subscription.WithEventRetention(a.ledCfg.EventRetention),
		), nil

	case subscription.BackendPostgres:
		if err := config.Load(&a.pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, a.pgCfg)
		if err != nil {
			return nil, err
		}
		a.pgPool = pool
		checks["postgres"] = pg.Healthcheck(pool)
		a.pgStore = subscription.NewPostgresStore(pool, a.ledCfg.OpTimeout)
		return a.pgStore, nil

	case subscription.BackendMongo:
		var mongoCfg mongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, mongoCfg)
		if err != nil {
			return nil, err
		}
		a.mongo = client
		checks["mongo"] = mongo.Healthcheck(client)
		store := subscription.NewMongoStore(client.Database(a.ledCfg.MongoDatabase), a.ledCfg.OpTimeout, a.ledCfg.EventRetention)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: %q", subscription.ErrUnknownBackend, a.ledCfg.Backend)
	}
}

// pruneEvents periodically drops applied event ids older than the retention
// from the postgres ledger. It returns when ctx is done.
func (a *app) pruneEvents(ctx context.Context) {
	if a.pgStore == nil || a.cfg.PruneInterval <= 0 || a.ledCfg.EventRetention <= 0 {
		return
	}
	ticker := time.NewTicker(a.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.pgStore.PruneEvents(ctx, time.Now().Add(-a.ledCfg.EventRetention))
			if err != nil {
				a.log.WarnContext(ctx, "failed to prune ledger events", logger.Error(err))
				continue
			}
			if n > 0 {
				a.log.InfoContext(ctx, "pruned ledger events", slog.Int64("count", n))
			}
		}
	}
}

// Close releases every connection in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.mongo != nil {
		errs = append(errs, a.mongo.Disconnect(ctx))
	}
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
