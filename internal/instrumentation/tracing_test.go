package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withRecorder installs a recording tracer provider for the duration of the test.
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestSpanStarters(t *testing.T) {
	tests := []struct {
		name      string
		start     func(context.Context) (context.Context, trace.Span)
		wantName  string
		wantKind  trace.SpanKind
		wantAttrs map[string]attribute.Value
	}{
		{
			name:     "route",
			start:    func(ctx context.Context) (context.Context, trace.Span) { return StartRouteSpan(ctx, "mail bob über lunch") },
			wantName: SpanRoute,
			wantKind: trace.SpanKindInternal,
			wantAttrs: map[string]attribute.Value{
				SpanAttrInputLength: attribute.IntValue(19),
			},
		},
		{
			name: "tool",
			start: func(ctx context.Context) (context.Context, trace.Span) {
				return StartToolSpan(ctx, "send_email", attribute.String("assistant.source", "chat"))
			},
			wantName: "tool.send_email",
			wantKind: trace.SpanKindInternal,
			wantAttrs: map[string]attribute.Value{
				SpanAttrTool:       attribute.StringValue("send_email"),
				"assistant.source": attribute.StringValue("chat"),
			},
		},
		{
			name: "google api",
			start: func(ctx context.Context) (context.Context, trace.Span) {
				return StartGoogleAPISpan(ctx, ServiceCalendar, OperationCreate)
			},
			wantName: "google.calendar.create",
			wantKind: trace.SpanKindClient,
			wantAttrs: map[string]attribute.Value{
				SpanAttrService:   attribute.StringValue(ServiceCalendar),
				SpanAttrOperation: attribute.StringValue(OperationCreate),
			},
		},
		{
			name:     "model",
			start:    func(ctx context.Context) (context.Context, trace.Span) { return StartModelSpan(ctx, "llama3.2", 42) },
			wantName: SpanGenerate,
			wantKind: trace.SpanKindClient,
			wantAttrs: map[string]attribute.Value{
				SpanAttrModel:        attribute.StringValue("llama3.2"),
				SpanAttrPromptLength: attribute.IntValue(42),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := withRecorder(t)

			ctx, span := tt.start(context.Background())
			assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
			span.End()

			ended := recorder.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, tt.wantName, ended[0].Name())
			assert.Equal(t, tt.wantKind, ended[0].SpanKind())

			got := attrMap(ended[0].Attributes())
			for key, want := range tt.wantAttrs {
				assert.Equal(t, want, got[key], key)
			}
		})
	}
}

func TestAddBrowserStepEvent(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "browser_use")
	AddBrowserStepEvent(ctx, 3, "click")
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventBrowserStep, events[0].Name)
	attrs := attrMap(events[0].Attributes)
	assert.Equal(t, int64(3), attrs[SpanAttrBrowserStep].AsInt64())
	assert.Equal(t, "click", attrs[SpanAttrBrowserAction].AsString())
}

func TestAddBrowserStepEvent_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() { AddBrowserStepEvent(context.Background(), 1, "navigate") })
}

func TestSpanStatus(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		recorder := withRecorder(t)

		_, span := StartToolSpan(context.Background(), "send_email")
		SetSpanError(span, errors.New("quota exceeded"))
		SetSpanError(span, nil)
		span.End()

		s := recorder.Ended()[0]
		assert.Equal(t, codes.Error, s.Status().Code)
		assert.Equal(t, "quota exceeded", s.Status().Description)
		assert.Len(t, s.Events(), 1, "one recorded exception")
	})

	t.Run("success", func(t *testing.T) {
		recorder := withRecorder(t)

		_, span := StartRouteSpan(context.Background(), "hi")
		SetSpanSuccess(span)
		span.End()

		assert.Equal(t, codes.Ok, recorder.Ended()[0].Status().Code)
	})
}
