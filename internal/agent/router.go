package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/logging"
)

// Router turns an utterance into a tool call with one model request and
// dispatches it.
type Router struct {
	model    llm.Model
	registry *Registry
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithMetrics sets the recorder for routing decisions.
func WithMetrics(m *instrumentation.Metrics) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

// NewRouter creates a router dispatching to the tools in registry.
func NewRouter(model llm.Model, registry *Registry, opts ...RouterOption) *Router {
	r := &Router{
		model:    model,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the tools the router dispatches to.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Route answers one utterance.
//
// The model is asked for a JSON tool call. When it names a registered tool,
// the tool's output is returned. Otherwise, including when the output cannot
// be parsed or the tool fails, the trimmed model text is returned as the
// answer. Only a failed model request is returned as an error.
func (r *Router) Route(ctx context.Context, utterance string) (string, error) {
	ctx, span := instrumentation.StartRouteSpan(ctx, utterance)
	defer span.End()

	out, err := r.model.Generate(ctx, RoutePrompt(r.registry, utterance))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return "", fmt.Errorf("model request failed: %w", err)
	}
	content := strings.TrimSpace(out)

	reply, toolName, err := r.dispatch(ctx, content)
	outcome := instrumentation.RouteDispatched
	if err != nil {
		outcome = instrumentation.RouteFallback
		reply = content
		if errors.Is(err, ErrNoToolCall) {
			r.logger.Debug("model answered without a tool call")
		} else {
			r.logger.Warn("tool dispatch failed, returning model text",
				logging.Tool(toolName),
				logging.Err(err))
		}
	}

	span.SetAttributes(
		attribute.String(instrumentation.SpanAttrRouteOutcome, outcome),
		attribute.String(instrumentation.SpanAttrTool, toolName))
	instrumentation.SetSpanSuccess(span)
	r.metrics.RecordRouteDecision(ctx, outcome, toolName)

	return reply, nil
}

// dispatch parses content and runs the requested tool. It returns the tool
// name whenever one could be parsed.
func (r *Router) dispatch(ctx context.Context, content string) (string, string, error) {
	call, err := ParseToolCall(content)
	if err != nil {
		return "", "", err
	}

	tool, err := r.registry.Lookup(call.Tool)
	if err != nil {
		return "", call.Tool, err
	}

	r.logger.Debug("dispatching tool", logging.Tool(tool.Name))
	result, err := tool.Handler(ctx, call.Input)
	if err != nil {
		return "", tool.Name, fmt.Errorf("tool %s failed: %w", tool.Name, err)
	}
	return result, tool.Name, nil
}
