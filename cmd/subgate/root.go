package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/subgate/pkg/config"
)

func newRootCmd() *cobra.Command {
	var envFiles []string

	rootCmd := &cobra.Command{
		Use:           "subgate",
		Short:         "Session authentication, subscription ledger and rate limiting service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if len(envFiles) == 0 {
				return nil
			}
			return config.LoadEnv(envFiles...)
		},
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files loaded before the environment is read")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSignWebhookCmd(),
		newIssueSessionCmd(),
	)

	return rootCmd
}
