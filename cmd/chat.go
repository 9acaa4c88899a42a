package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant/internal/repl"
	"github.com/teemow/assistant/internal/tools/common"
)

func newChatCmd() *cobra.Command {
	var withBrowser bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive assistant",
		Long: `Start an interactive loop. Each line you type is routed to one tool, or
answered directly when no tool fits. Exit with Ctrl-D or Ctrl-C.

With --browser the browser_use tool is available and drives a local Chrome.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			loop := repl.New(a.router, cmd.InOrStdin(), cmd.OutOrStdout(), repl.WithLogger(a.logger))
			return loop.Run(common.WithSource(ctx, common.SourceChat))
		},
	}

	cmd.Flags().BoolVar(&withBrowser, "browser", false, "Enable the browser_use tool (requires Chrome)")
	return cmd
}
