package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrEmptyConnectionString is returned when PG_CONN_URL is not set.
	ErrEmptyConnectionString = errors.New("pg: empty connection string")
	// ErrFailedToParseDBConfig wraps pgxpool.ParseConfig failures.
	ErrFailedToParseDBConfig = errors.New("pg: invalid connection string")
	// ErrFailedToOpenDBConnection wraps the last connection or ping failure.
	ErrFailedToOpenDBConnection = errors.New("pg: failed to connect")
	// ErrUnhealthy is returned by the readiness probe.
	ErrUnhealthy = errors.New("pg: healthcheck failed")
	// ErrFailedToApplyMigrations wraps goose failures.
	ErrFailedToApplyMigrations = errors.New("pg: failed to apply migrations")
	// ErrMigrationsNotProvided is returned by Migrate for a nil filesystem.
	ErrMigrationsNotProvided = errors.New("pg: migrations filesystem not provided")
)

// IsNotFoundError reports whether a query matched no rows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
