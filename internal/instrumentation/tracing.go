package instrumentation

import (
	"context"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name used for all assistant spans.
const TracerName = "github.com/teemow/assistant"

// Span attribute keys.
const (
	SpanAttrTool          = "assistant.tool"
	SpanAttrInputLength   = "assistant.input_length"
	SpanAttrRouteOutcome  = "assistant.route_outcome"
	SpanAttrService       = "google.service"
	SpanAttrOperation     = "google.operation"
	SpanAttrModel         = "llm.model"
	SpanAttrPromptLength  = "llm.prompt_length"
	SpanAttrBrowserAction = "browser.action"

	// SpanAttrBrowserStep is 1-based.
	SpanAttrBrowserStep = "browser.step"
)

// Span names.
const (
	SpanRoute        = "agent.route"
	SpanGenerate     = "llm.generate"
	EventBrowserStep = "browser.step"
)

func startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(kind),
	)
}

// StartRouteSpan starts the span covering one routed user request. Only the
// length of the utterance is recorded.
func StartRouteSpan(ctx context.Context, utterance string) (context.Context, trace.Span) {
	return startSpan(ctx, SpanRoute, trace.SpanKindInternal,
		attribute.Int(SpanAttrInputLength, utf8.RuneCountInString(utterance)))
}

// StartToolSpan starts a span named "tool.<name>" for a tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return startSpan(ctx, "tool."+toolName, trace.SpanKindInternal, attrs...)
}

// StartGoogleAPISpan starts a client span named "google.<service>.<operation>".
func StartGoogleAPISpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return startSpan(ctx, "google."+service+"."+operation, trace.SpanKindClient,
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation))
}

// StartModelSpan starts a client span for one Ollama completion.
func StartModelSpan(ctx context.Context, model string, promptLen int) (context.Context, trace.Span) {
	return startSpan(ctx, SpanGenerate, trace.SpanKindClient,
		attribute.String(SpanAttrModel, model),
		attribute.Int(SpanAttrPromptLength, promptLen))
}

// AddBrowserStepEvent adds a step event to the span in ctx, usually the
// browser_use tool span.
func AddBrowserStepEvent(ctx context.Context, step int, action string) {
	trace.SpanFromContext(ctx).AddEvent(EventBrowserStep, trace.WithAttributes(
		attribute.Int(SpanAttrBrowserStep, step),
		attribute.String(SpanAttrBrowserAction, action),
	))
}

// SetSpanError records err on the span and marks it failed. A nil err is a no-op.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
