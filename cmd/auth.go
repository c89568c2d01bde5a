package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gcalphotos/gcalphotos/internal/googleauth"
	"github.com/gcalphotos/gcalphotos/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		debugMode       bool
		credentialsFile string
		tokenFile       string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar and Google Photos",
		Long: `Run the interactive OAuth consent flow and persist the resulting token.

The flow prints an authorization URL, waits for the code Google shows
after consent, exchanges it for a token and stores the token on disk.
The serve command refreshes the persisted token on its own afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if credentialsFile == "" {
				credentialsFile = os.Getenv("GCALPHOTOS_CREDENTIALS_FILE")
			}
			if tokenFile == "" {
				tokenFile = os.Getenv("GCALPHOTOS_TOKEN_FILE")
			}

			logging.Setup(debugMode)

			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store := googleauth.NewStore(credentialsFile, tokenFile,
				googleauth.WithConsent(googleauth.TerminalConsent(os.Stdin, os.Stderr)),
			)

			if _, err := store.EnsureValid(ctx); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Printf("Authorization complete. Token saved to %s\n", store.TokenFile())
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "", "Path to the OAuth client secret JSON. Can also use GCALPHOTOS_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Path to the persisted OAuth token. Can also use GCALPHOTOS_TOKEN_FILE env var.")

	return cmd
}
