package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/subgate/pkg/webhook"
)

// secretEnv names the variable holding each provider's signing secret.
var secretEnv = map[string]string{
	webhook.LemonSqueezyName: "LEMONSQUEEZY_WEBHOOK_SECRET",
	webhook.PaddleName:       "PADDLE_WEBHOOK_SECRET",
}

func newSignWebhookCmd() *cobra.Command {
	var (
		provider string
		secret   string
	)

	cmd := &cobra.Command{
		Use:   "sign-webhook [file]",
		Short: "Print the signature header value for a webhook payload",
		Long: "Signs the payload read from file, or stdin when omitted, the way the billing provider would. " +
			"Use it to replay webhook fixtures against a local instance.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(secretEnv[provider])
			}
			if secret == "" {
				return webhook.ErrMissingSecret
			}

			var (
				payload []byte
				err     error
			)
			if len(args) == 1 {
				payload, err = os.ReadFile(args[0])
			} else {
				payload, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			switch provider {
			case webhook.LemonSqueezyName:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), webhook.Sign(secret, payload))
			case webhook.PaddleName:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), webhook.SignPaddle(secret, time.Now(), payload))
			default:
				err = errors.New("unknown provider: " + provider)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&provider, "provider", webhook.LemonSqueezyName, "billing provider: lemonsqueezy or paddle")
	cmd.Flags().StringVar(&secret, "secret", "", "webhook signing secret, read from the provider's environment variable when empty")

	return cmd
}
