package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/subgate/pkg/httpserver"
	"github.com/dmitrymomot/subgate/pkg/logger"
	"github.com/dmitrymomot/subgate/pkg/pg"
	"github.com/dmitrymomot/subgate/pkg/subscription"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and webhook endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply ledger migrations before serving (postgres backend)")

	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	log, err := loadLogger()
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	a, err := newApp(ctx, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.WarnContext(closeCtx, "failed to close connections", logger.Error(err))
		}
	}()
	if err != nil {
		log.ErrorContext(ctx, "failed to start", logger.Error(err))
		return err
	}

	if migrate && a.pgPool != nil {
		if err := pg.Migrate(ctx, a.pgPool, subscription.Migrations, subscription.MigrationsDir, a.pgCfg, log); err != nil {
			log.ErrorContext(ctx, "failed to migrate", logger.Error(err))
			return err
		}
	}

	go a.pruneEvents(ctx)

	srv := httpserver.NewFromConfig(a.http, httpserver.WithLogger(log))
	return srv.Run(ctx, a.srv.routes())
}
