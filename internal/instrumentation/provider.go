package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Resource attribute keys describing the language model.
const (
	ResourceAttrModel     = "assistant.model"
	ResourceAttrOllamaURL = "assistant.ollama_url"
)

// Provider owns the meter and tracer providers of the process.
type Provider struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	prometheus     bool
}

// NewProvider sets up metrics and tracing and installs them as the global
// OpenTelemetry providers. A disabled config yields a provider whose metrics
// recorder and tracer do nothing.
//
// Stdout exporters write to stderr, since stdout carries the conversation or
// the MCP stream.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{metrics: &Metrics{}}, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(resourceAttributes(cfg)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader, err := newMetricReader(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	p := &Provider{
		meterProvider: metric.NewMeterProvider(metric.WithResource(res), metric.WithReader(reader)),
		prometheus:    cfg.MetricsExporter == ExporterPrometheus,
	}

	spanExporter, err := newSpanExporter(ctx, cfg)
	if err != nil {
		if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
		return nil, fmt.Errorf("failed to create span exporter: %w", err)
	}
	p.tracerProvider = newTracerProvider(res, spanExporter)

	otel.SetMeterProvider(p.meterProvider)
	otel.SetTracerProvider(p.tracerProvider)

	p.metrics, err = NewMetrics(p.meterProvider.Meter(TracerName))
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}
	return p, nil
}

// resourceAttributes identifies the process and the model it talks to.
func resourceAttributes(cfg Config) []attribute.KeyValue {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
	}
	if cfg.Model != "" {
		attrs = append(attrs, attribute.String(ResourceAttrModel, cfg.Model))
	}
	if cfg.OllamaURL != "" {
		attrs = append(attrs, attribute.String(ResourceAttrOllamaURL, cfg.OllamaURL))
	}
	if host, err := os.Hostname(); err == nil {
		attrs = append(attrs, semconv.HostName(host))
	}
	return attrs
}

func newMetricReader(ctx context.Context, cfg Config) (metric.Reader, error) {
	switch cfg.MetricsExporter {
	case ExporterPrometheus:
		// Registers with the default registry, which the metrics server
		// exposes through promhttp.
		exporter, err := prometheus.New()
		if err != nil {
			return nil, err
		}
		return exporter, nil
	case ExporterOTLP:
		if cfg.OTLPEndpoint == "" {
			return nil, errors.New("OTLP endpoint is required for the otlp metrics exporter")
		}
		exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return nil, err
		}
		return metric.NewPeriodicReader(exporter), nil
	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
		if err != nil {
			return nil, err
		}
		return metric.NewPeriodicReader(exporter), nil
	default:
		return nil, fmt.Errorf("unsupported metrics exporter %q", cfg.MetricsExporter)
	}
}

// newSpanExporter returns nil when tracing is off.
func newSpanExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.TracingExporter {
	case ExporterNone, "":
		return nil, nil
	case ExporterOTLP:
		if cfg.OTLPEndpoint == "" {
			return nil, errors.New("OTLP endpoint is required for the otlp tracing exporter")
		}
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", cfg.TracingExporter)
	}
}

// newTracerProvider samples every trace when spans are exported and none
// otherwise.
func newTracerProvider(res *resource.Resource, exporter sdktrace.SpanExporter) *sdktrace.TracerProvider {
	if exporter == nil {
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
}

// Metrics returns the metrics recorder.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// Tracer returns a tracer, a no-op one when the provider is disabled.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tracerProvider.Tracer(name)
}

// ServesPrometheus reports whether metrics are collected into the default
// Prometheus registry and can be scraped from the metrics server.
func (p *Provider) ServesPrometheus() bool {
	return p.prometheus
}

// Enabled reports whether metrics and traces are recorded.
func (p *Provider) Enabled() bool {
	return p.meterProvider != nil
}

// Shutdown flushes pending telemetry and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
