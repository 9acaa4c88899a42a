package agent

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/tools/common"
)

// recordingTool remembers every input it was called with.
type recordingTool struct {
	inputs []string
	reply  string
	err    error
}

func (rt *recordingTool) tool(name string) common.Tool {
	return common.Tool{
		Name: name,
		Handler: func(_ context.Context, input string) (string, error) {
			rt.inputs = append(rt.inputs, input)
			return rt.reply, rt.err
		},
	}
}

func replyWith(text string) llm.Model {
	return llm.ModelFunc(func(context.Context, string) (string, error) { return text, nil })
}

func newTestRouter(t *testing.T, model llm.Model, tools ...common.Tool) (*Router, *bytes.Buffer) {
	t.Helper()
	reg, err := NewRegistry(tools...)
	require.NoError(t, err)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewRouter(model, reg, WithLogger(logger)), &logs
}

func TestRouter_Route_Dispatches(t *testing.T) {
	send := &recordingTool{reply: "Email sent to demo@example.com"}
	router, _ := newTestRouter(t,
		replyWith(`{"tool": "send_email", "input": "demo@example.com | Hello | Hi there"}`),
		send.tool("send_email"))

	out, err := router.Route(context.Background(), "email demo saying hi")
	require.NoError(t, err)
	assert.Equal(t, "Email sent to demo@example.com", out)
	assert.Equal(t, []string{"demo@example.com | Hello | Hi there"}, send.inputs)
}

func TestRouter_Route_SendsPromptOnce(t *testing.T) {
	var prompts []string
	model := llm.ModelFunc(func(_ context.Context, p string) (string, error) {
		prompts = append(prompts, p)
		return "hi", nil
	})
	router, _ := newTestRouter(t, model, (&recordingTool{}).tool("read_unread_emails"))

	_, err := router.Route(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "- read_unread_emails\n")
	assert.Contains(t, prompts[0], "\nUser: hello")
}

func TestRouter_Route_FallsBackToModelText(t *testing.T) {
	tests := []struct {
		name      string
		modelText string
		want      string
		wantWarn  bool
	}{
		{"no json", "  Hello! I am your assistant.\n", "Hello! I am your assistant.", false},
		{"unknown tool", `{"tool": "order_pizza", "input": "large"}`, `{"tool": "order_pizza", "input": "large"}`, true},
		{"malformed json", `{"tool": "send_email", "input": }`, `{"tool": "send_email", "input": }`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send := &recordingTool{reply: "sent"}
			router, logs := newTestRouter(t, replyWith(tt.modelText), send.tool("send_email"))

			out, err := router.Route(context.Background(), "x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Empty(t, send.inputs)
			assert.Equal(t, tt.wantWarn, bytes.Contains(logs.Bytes(), []byte("level=WARN")))
		})
	}
}

func TestRouter_Route_ToolErrorFallsBack(t *testing.T) {
	failing := &recordingTool{err: errors.New("gmail unavailable")}
	text := `{"tool": "read_unread_emails", "input": ""}`
	router, logs := newTestRouter(t, replyWith(text), failing.tool("read_unread_emails"))

	out, err := router.Route(context.Background(), "any unread mail?")
	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Equal(t, []string{""}, failing.inputs)
	assert.Contains(t, logs.String(), "gmail unavailable")
	assert.Contains(t, logs.String(), "tool=read_unread_emails")
}

func TestRouter_Route_ModelError(t *testing.T) {
	model := llm.ModelFunc(func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	})
	router, _ := newTestRouter(t, model)

	_, err := router.Route(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRouter_Route_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	router, _ := newTestRouter(t, replyWith(`{"tool": "t", "input": "x"}`), (&recordingTool{reply: "ok"}).tool("t"))
	_, err := router.Route(context.Background(), "go")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "agent.route", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, instrumentation.RouteDispatched, attrs[instrumentation.SpanAttrRouteOutcome].AsString())
	assert.Equal(t, "t", attrs[instrumentation.SpanAttrTool].AsString())
}
