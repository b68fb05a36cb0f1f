package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/subgate/pkg/config"
	"github.com/dmitrymomot/subgate/pkg/redis"
	"github.com/dmitrymomot/subgate/pkg/session"
	"github.com/dmitrymomot/subgate/pkg/token"
)

// newIssueSessionCmd mints a session for an account directly in the store.
// Credential checks happen upstream of this service, so operators use it to
// obtain tokens for support and local testing.
func newIssueSessionCmd() *cobra.Command {
	var (
		account string
		label   string
	)

	cmd := &cobra.Command{
		Use:   "issue-session",
		Short: "Create a session for an account and print its bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			accountID, err := uuid.Parse(account)
			if err != nil {
				return fmt.Errorf("invalid account id: %w", err)
			}

			var (
				tokCfg   token.Config
				sessCfg  session.Config
				redisCfg redis.Config
			)
			if err := config.Load(&tokCfg); err != nil {
				return err
			}
			if err := config.Load(&sessCfg); err != nil {
				return err
			}
			if err := config.Load(&redisCfg); err != nil {
				return err
			}

			codec, err := token.NewCodec(tokCfg.SigningKeys)
			if err != nil {
				return err
			}
			client, err := redis.Connect(ctx, redisCfg)
			if err != nil {
				return err
			}
			defer client.Close()

			store := session.NewRedisStore(client,
				session.WithKeyPrefix(sessCfg.KeyPrefix),
				session.WithOpTimeout(sessCfg.OpTimeout),
			)
			issued, err := session.NewFromConfig(sessCfg, codec, store).
				Login(ctx, accountID, map[string]string{"issued_by": "cli", "label": label})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), issued.Token)
			return err
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account uuid")
	cmd.Flags().StringVar(&label, "label", "", "free-form label stored with the session")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
