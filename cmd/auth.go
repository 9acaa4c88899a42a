package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar and Gmail access",
		Long: `Make sure a usable Google token is cached. A valid cached token is kept,
an expired one is refreshed, and otherwise the browser consent flow runs.

The client secret is read from --credentials-file (a "Desktop app" OAuth client
downloaded from the Google Cloud console).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFor(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			manager, err := google.NewManagerFromFile(cfg.CredentialsFile, cfg.TokenFile, google.WithLogger(logger))
			if err != nil {
				return err
			}
			tok, err := manager.Obtain(ctx)
			if err != nil {
				return fmt.Errorf("failed to authorize: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Google token stored at %s\n", cfg.TokenFile)
			if !tok.Expiry.IsZero() {
				fmt.Fprintf(out, "Access token valid until %s\n", tok.Expiry.Local().Format(time.RFC1123))
			}
			if tok.RefreshToken == "" {
				fmt.Fprintln(out, "Warning: no refresh token was issued, you will need to authorize again when the token expires.")
			}
			return nil
		},
	}
	return cmd
}
