package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant/internal/tools/common"
)

func newAskCmd() *cobra.Command {
	var withBrowser bool

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Route a single request and print the reply",
		Long: `Route one request the same way the chat loop does, print the reply and exit.

Examples:
  assistant ask "schedule dentist appointment tomorrow at 5pm"
  assistant ask read my unread emails`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utterance := strings.TrimSpace(strings.Join(args, " "))
			if utterance == "" {
				return fmt.Errorf("request must not be empty")
			}

			cfg, err := configFor(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cfg, appOptions{browser: withBrowser})
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					a.logger.Warn("shutdown failed", "error", err)
				}
			}()

			reply, err := a.router.Route(common.WithSource(ctx, common.SourceAsk), utterance)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withBrowser, "browser", false, "Enable the browser_use tool (requires Chrome)")
	return cmd
}
