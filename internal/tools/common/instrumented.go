package common

import (
	"context"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/assistant/internal/instrumentation"
)

// Instrumented wraps a tool handler with a span, metrics and audit logging.
// Both metrics and auditLogger may be nil.
//
// Usage:
//
//	tool.Handler = common.Instrumented(tool.Name, metrics, auditLogger, tool.Handler)
func Instrumented(
	toolName string,
	metrics *instrumentation.Metrics,
	auditLogger *instrumentation.AuditLogger,
	handler Handler,
) Handler {
	return func(ctx context.Context, input string) (string, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName,
			attribute.Int(instrumentation.SpanAttrInputLength, utf8.RuneCountInString(input)))
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName, input).
			WithSource(SourceFromContext(ctx)).
			WithSpanContext(ctx)

		out, err := handler(ctx, input)
		duration := time.Since(start)
		invocation.Complete(err)

		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		auditLogger.LogToolInvocation(invocation)

		return out, err
	}
}

// InstrumentAll wraps every tool's handler with Instrumented.
func InstrumentAll(tools []Tool, metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) []Tool {
	out := make([]Tool, len(tools))
	for i, t := range tools {
		t.Handler = Instrumented(t.Name, metrics, auditLogger, t.Handler)
		out[i] = t
	}
	return out
}
