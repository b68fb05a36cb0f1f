// Package pg connects to PostgreSQL with pgx/v5 and applies goose schema
// migrations shipped as embedded filesystems.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	err = pg.Migrate(ctx, pool, subscription.Migrations, subscription.MigrationsDir, cfg, log)
//
// Connect retries with a growing wait until the database answers a ping.
// Healthcheck returns a probe for readiness endpoints and IsNotFoundError
// classifies driver errors.
package pg
