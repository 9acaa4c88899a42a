package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/teemow/assistant/internal/agent"
	"github.com/teemow/assistant/internal/browser"
	"github.com/teemow/assistant/internal/calendar"
	"github.com/teemow/assistant/internal/config"
	"github.com/teemow/assistant/internal/dateparse"
	"github.com/teemow/assistant/internal/gmail"
	"github.com/teemow/assistant/internal/google"
	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/logging"
	"github.com/teemow/assistant/internal/server"
	"github.com/teemow/assistant/internal/tools/browser_tools"
	"github.com/teemow/assistant/internal/tools/calendar_tools"
	"github.com/teemow/assistant/internal/tools/common"
	"github.com/teemow/assistant/internal/tools/gmail_tools"
)

// app is the wired assistant: model, Google clients, tools and router.
type app struct {
	cfg           config.Config
	logger        *slog.Logger
	provider      *instrumentation.Provider
	metricsServer *server.MetricsServer
	model         *llm.Ollama
	registry      *agent.Registry
	router        *agent.Router
}

type appOptions struct {
	// browser registers the browser_use tool.
	browser bool
}

// toolDeps are the collaborators the tool set is built from.
type toolDeps struct {
	model    llm.Model
	calendar calendar_tools.EventCreator
	mail     gmail_tools.Mailbox
	location *time.Location

	// browser backs browser_use. The tool is left out when nil.
	browser browser_tools.Runner
}

// buildTools returns the tools in the order they are offered to the model.
func buildTools(d toolDeps) []common.Tool {
	var tools []common.Tool
	tools = append(tools, calendar_tools.Tools(calendar_tools.Deps{
		Model:    d.model,
		Calendar: d.calendar,
		Dates:    dateparse.New(d.location),
	})...)
	tools = append(tools, gmail_tools.Tools(gmail_tools.Deps{
		Mail:  d.mail,
		Model: d.model,
	})...)
	if d.browser != nil {
		tools = append(tools, browser_tools.Tools(d.browser)...)
	}
	return tools
}

// newLogger creates the process logger. Logs go to stderr so stdout carries
// only the conversation or the MCP stream.
func newLogger(cfg config.Config) *slog.Logger {
	logger := logging.New(os.Stderr, cfg.Debug)
	slog.SetDefault(logger)
	return logger
}

// newApp wires the assistant. It authenticates with Google before returning,
// which may run the interactive consent flow.
func newApp(ctx context.Context, cfg config.Config, opts appOptions) (a *app, err error) {
	a = &app{cfg: cfg, logger: newLogger(cfg)}
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()

	a.provider, err = instrumentation.NewProvider(ctx, instrumentation.NewConfig(cfg, version))
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	if err := a.startMetricsServer(); err != nil {
		return nil, err
	}
	metrics := a.provider.Metrics()
	audit := instrumentation.NewAuditLogger(a.logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a.model = llm.NewOllama(cfg.OllamaURL, cfg.Model,
		llm.WithLogger(a.logger),
		llm.WithMetrics(metrics),
	)
	if err := a.model.Ping(ctx); err != nil {
		a.logger.Warn("language model is not ready", logging.Model(cfg.Model), logging.Err(err))
	}

	manager, err := google.NewManagerFromFile(cfg.CredentialsFile, cfg.TokenFile,
		google.WithLogger(a.logger),
		google.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}
	httpClient, err := manager.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Google: %w", err)
	}

	calClient, err := calendar.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	calClient.SetLogger(a.logger)
	calClient.SetMetrics(metrics)

	mailClient, err := gmail.NewClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	mailClient.SetLogger(a.logger)
	mailClient.SetMetrics(metrics)

	deps := toolDeps{
		model:    a.model,
		calendar: calClient,
		mail:     mailClient,
		location: loc,
	}
	if opts.browser {
		deps.browser = browser.NewAgent(a.model,
			browser.ChromeFactory(browser.ChromeOptions{Headless: cfg.BrowserHeadless}),
			browser.WithMaxSteps(cfg.BrowserMaxSteps),
			browser.WithLogger(a.logger),
			browser.WithMetrics(metrics),
		)
	}

	a.registry, err = agent.NewRegistry(common.InstrumentAll(buildTools(deps), metrics, audit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	a.router = agent.NewRouter(a.model, a.registry,
		agent.WithLogger(a.logger),
		agent.WithMetrics(metrics),
	)

	a.logger.Debug("assistant ready",
		logging.Model(cfg.Model),
		slog.Any("tools", a.registry.Names()),
		slog.String("timezone", loc.String()))
	return a, nil
}

// startMetricsServer serves /metrics when an address is configured and the
// provider exports to Prometheus.
func (a *app) startMetricsServer() error {
	if a.cfg.MetricsAddr == "" {
		return nil
	}
	if !a.provider.Enabled() || !a.provider.ServesPrometheus() {
		a.logger.Warn("metrics address set but prometheus exporter is not active, not serving metrics",
			"addr", a.cfg.MetricsAddr)
		return nil
	}

	srv, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    a.cfg.MetricsAddr,
		InstrumentationProvider: a.provider,
		Logger:                  a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics server: %w", err)
	}
	// Bind before returning so a busy port fails the command.
	if err := srv.Listen(); err != nil {
		return fmt.Errorf("metrics server failed to start: %w", err)
	}
	a.metricsServer = srv

	go func() {
		if err := srv.Start(); err != nil {
			a.logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	return nil
}

// close stops the metrics server and flushes telemetry.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	var errs []error
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown metrics server: %w", err))
		}
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown instrumentation: %w", err))
		}
	}
	return errors.Join(errs...)
}
