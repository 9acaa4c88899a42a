package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant/internal/resources"
	"github.com/teemow/assistant/internal/server"
)

func newServeCmd() *cobra.Command {
	var withBrowser bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start a Model Context Protocol (MCP) server on stdin/stdout.

Every assistant tool is exposed with a single string argument "input". The
assistant_ask tool takes a plain-language request and routes it like the chat
loop does. The resources assistant://router/prompt and assistant://status
describe the running assistant.

Authorize first with "assistant auth": the consent flow needs a terminal, and
an MCP client usually does not provide one.`,
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

			mcpSrv, err := server.NewMCPServer(server.MCPServerConfig{
				Name:     "assistant",
				Version:  version,
				Registry: a.registry,
				Asker:    a.router,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			if err := resources.RegisterAssistantResources(mcpSrv, resources.Info{
				Version:   version,
				Model:     cfg.Model,
				OllamaURL: cfg.OllamaURL,
				Timezone:  cfg.Timezone,
				Registry:  a.registry,
				Pinger:    a.model,
			}); err != nil {
				return fmt.Errorf("failed to register resources: %w", err)
			}

			a.logger.Info("serving MCP over stdio", "tools", a.registry.Len()+1)
			return server.ServeStdio(ctx, mcpSrv, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&withBrowser, "browser", false, "Expose the browser_use tool (requires Chrome)")
	return cmd
}
