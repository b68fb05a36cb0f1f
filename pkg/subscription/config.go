package subscription

import "time"

// Backend names accepted by Config.Backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds ledger settings loaded from the environment.
type Config struct {
	Backend        string        `env:"LEDGER_BACKEND" envDefault:"postgres"`
	Plans          Plans         `env:"LEDGER_PLANS"`
	FreePlan       string        `env:"LEDGER_FREE_PLAN" envDefault:"free"`
	DefaultPlan    string        `env:"LEDGER_DEFAULT_PLAN" envDefault:"pro"`
	MaxAttempts    int           `env:"LEDGER_MAX_ATTEMPTS" envDefault:"5"`
	OpTimeout      time.Duration `env:"LEDGER_OP_TIMEOUT" envDefault:"500ms"`
	EventRetention time.Duration `env:"LEDGER_EVENT_RETENTION" envDefault:"720h"`
	KeyPrefix      string        `env:"LEDGER_KEY_PREFIX" envDefault:"ledger"`
	MongoDatabase  string        `env:"LEDGER_MONGO_DATABASE" envDefault:"subgate"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendPostgres,
		Plans:          Plans{},
		FreePlan:       "free",
		DefaultPlan:    "pro",
		MaxAttempts:    5,
		OpTimeout:      500 * time.Millisecond,
		EventRetention: 720 * time.Hour,
		KeyPrefix:      "ledger",
		MongoDatabase:  "subgate",
	}
}

// NewFromConfig creates a ledger over store using cfg. Explicit options are
// applied after the configuration.
func NewFromConfig(cfg Config, store Store, opts ...Option) *Ledger {
	base := []Option{
		WithPlans(cfg.Plans),
		WithFreePlan(cfg.FreePlan),
		WithDefaultPlan(cfg.DefaultPlan),
		WithMaxAttempts(cfg.MaxAttempts),
	}
	return NewLedger(store, append(base, opts...)...)
}
