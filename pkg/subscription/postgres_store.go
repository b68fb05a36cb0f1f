package subscription

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/subgate/pkg/pg"
)

// Migrations holds the goose migrations of the ledger schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of the migrations inside Migrations.
const MigrationsDir = "migrations"

// PgxDB is the subset of *pgxpool.Pool used by PostgresStore.
type PgxDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store on PostgreSQL. Event ids live in
// subscription_events and are inserted in the same transaction as the
// subscription write.
type PostgresStore struct {
	db        PgxDB
	opTimeout time.Duration
}

// NewPostgresStore creates a Postgres-backed ledger store. A zero opTimeout
// means 500ms.
func NewPostgresStore(db PgxDB, opTimeout time.Duration) *PostgresStore {
	if opTimeout <= 0 {
		opTimeout = 500 * time.Millisecond
	}
	return &PostgresStore{db: db, opTimeout: opTimeout}
}

const selectColumns = `provider_sub_id, account_id, provider, product_id, variant_id, status,
	current_period_end, last_event_id, last_event_at, cancelled_at, created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, providerSubID string) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	row := s.db.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM subscriptions WHERE provider_sub_id = $1`,
		providerSubID,
	)
	return scanSubscription(row)
}

func (s *PostgresStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	row := s.db.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM subscriptions WHERE account_id = $1
		ORDER BY created_at DESC LIMIT 1`,
		accountID,
	)
	return scanSubscription(row)
}

func (s *PostgresStore) EventApplied(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscription_events WHERE event_id = $1)`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return exists, nil
}

func (s *PostgresStore) Create(ctx context.Context, sub *Subscription) error {
	if err := sub.validate(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := recordEvent(ctx, tx, sub); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO subscriptions (`+selectColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (provider_sub_id) DO NOTHING`,
			sub.ProviderSubID, sub.AccountID, sub.Provider, sub.ProductID, sub.VariantID,
			string(sub.Status), nullTime(sub.CurrentPeriodEnd), sub.LastEventID, sub.LastEventAt,
			sub.CancelledAt, sub.CreatedAt, sub.UpdatedAt,
		)
		if err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrConflict
		}
		return nil
	})
}

func (s *PostgresStore) Update(ctx context.Context, sub *Subscription, prev Revision) error {
	if err := sub.validate(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := recordEvent(ctx, tx, sub); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE subscriptions SET
				product_id = $2, variant_id = $3, status = $4, current_period_end = $5,
				last_event_id = $6, last_event_at = $7, cancelled_at = $8, updated_at = $9
			WHERE provider_sub_id = $1 AND last_event_id = $10 AND last_event_at = $11`,
			sub.ProviderSubID, sub.ProductID, sub.VariantID, string(sub.Status),
			nullTime(sub.CurrentPeriodEnd), sub.LastEventID, sub.LastEventAt, sub.CancelledAt,
			sub.UpdatedAt, prev.EventID, prev.At,
		)
		if err != nil {
			return errors.Join(ErrStoreUnavailable, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrConflict
		}
		return nil
	})
}

// PruneEvents deletes event ids recorded before the cutoff. Redelivery of a
// pruned event is still caught by the stale check.
func (s *PostgresStore) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM subscription_events WHERE applied_at < $1`, before)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func recordEvent(ctx context.Context, tx pgx.Tx, sub *Subscription) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO subscription_events (event_id, provider_sub_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING`,
		sub.LastEventID, sub.ProviderSubID,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var (
		sub       Subscription
		status    string
		periodEnd *time.Time
	)
	err := row.Scan(
		&sub.ProviderSubID, &sub.AccountID, &sub.Provider, &sub.ProductID, &sub.VariantID, &status,
		&periodEnd, &sub.LastEventID, &sub.LastEventAt, &sub.CancelledAt, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	sub.Status = Status(status)
	if periodEnd != nil {
		sub.CurrentPeriodEnd = *periodEnd
	}
	return &sub, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
