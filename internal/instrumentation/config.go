package instrumentation

import (
	"github.com/teemow/assistant/internal/config"
)

// ServiceName is the OpenTelemetry service name of every assistant process.
const ServiceName = "assistant"

// Config holds the telemetry settings of one assistant process.
type Config struct {
	// Enabled turns metrics and traces on. A disabled provider records nothing.
	Enabled bool

	// Version is reported as service.version.
	Version string

	// Model and OllamaURL describe the language model behind the process and
	// are attached to every exported metric and span as resource attributes.
	Model     string
	OllamaURL string

	// MetricsExporter is prometheus, otlp or stdout.
	MetricsExporter string

	// TracingExporter is none, otlp or stdout.
	TracingExporter string

	// OTLPEndpoint is the collector base URL. An http:// URL disables TLS.
	OTLPEndpoint string
}

// NewConfig derives the telemetry settings from the assistant configuration.
func NewConfig(cfg config.Config, version string) Config {
	c := Config{
		Enabled:         cfg.Instrumentation,
		Version:         version,
		Model:           cfg.Model,
		OllamaURL:       cfg.OllamaURL,
		MetricsExporter: cfg.MetricsExporter,
		TracingExporter: cfg.TracingExporter,
		OTLPEndpoint:    cfg.OTLPEndpoint,
	}
	if c.MetricsExporter == "" {
		c.MetricsExporter = ExporterPrometheus
	}
	if c.TracingExporter == "" {
		c.TracingExporter = ExporterNone
	}
	return c
}

// Constants for metric label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"

	ServiceGmail    = "gmail"
	ServiceCalendar = "calendar"
	ServiceOllama   = "ollama"
	ServiceBrowser  = "browser"
)

// Exporter names, shared with the configuration.
const (
	ExporterPrometheus = config.ExporterPrometheus
	ExporterOTLP       = config.ExporterOTLP
	ExporterStdout     = config.ExporterStdout
	ExporterNone       = config.ExporterNone
)

// Route outcome values recorded by the router.
const (
	RouteDispatched = "dispatched"
	RouteFallback   = "fallback"
)

// Operation types for Google API metrics.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationSend   = "send"
)
