package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/subgate/pkg/config"
	"github.com/dmitrymomot/subgate/pkg/logger"
	"github.com/dmitrymomot/subgate/pkg/pg"
	"github.com/dmitrymomot/subgate/pkg/subscription"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres ledger migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log, err := loadLogger()
			if err != nil {
				return err
			}

			var cfg pg.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			pool, err := pg.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.Migrate(ctx, pool, subscription.Migrations, subscription.MigrationsDir, cfg, log); err != nil {
				log.ErrorContext(ctx, "migration failed", logger.Error(err))
				return err
			}
			log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
