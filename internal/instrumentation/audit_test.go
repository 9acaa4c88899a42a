package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

const (
	testToolSend  = "send_email"
	testToolEvent = "create_calendar_event"
	testInput     = "bob@example.com | Lunch | See you at noon"
)

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation(testToolSend, testInput)

	if ti.Tool != testToolSend {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolSend)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.Complete(nil)

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Error != "" {
		t.Errorf("Error should be empty, got %q", ti.Error)
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolEvent, "dentist tomorrow at 5pm")
	ti.Complete(errors.New("permission denied"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "permission denied" {
		t.Errorf("Error = %q, want %q", ti.Error, "permission denied")
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolSend, testInput).WithSource("chat")
	ti.TraceID = "abc123"
	ti.Complete(nil)

	found := make(map[string]string)
	for _, a := range ti.LogAttrs() {
		found[a.Key] = a.Value.String()
	}

	assert.Equal(t, testToolSend, found["tool"])
	assert.Equal(t, "chat", found["source"])
	assert.Equal(t, "abc123", found["trace_id"])
	assert.Equal(t, "41", found["input_length"])
	assert.NotContains(t, found, "error")
	assert.NotContains(t, found, "input")
}

func TestToolInvocation_WithSpanContext(t *testing.T) {
	ti := NewToolInvocation(testToolSend, "").WithSpanContext(context.Background())
	if ti.TraceID != "" || ti.SpanID != "" {
		t.Error("trace context should stay empty without an active span")
	}

	withRecorder(t)
	ctx, span := StartToolSpan(context.Background(), testToolSend)
	defer span.End()

	sc := trace.SpanFromContext(ctx).SpanContext()
	ti = NewToolInvocation(testToolSend, "").WithSpanContext(ctx)
	assert.Equal(t, sc.TraceID().String(), ti.TraceID)
	assert.Equal(t, sc.SpanID().String(), ti.SpanID)
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLogger(logger)
	al.LogToolInvocation(NewToolInvocation(testToolSend, testInput).Complete(nil))
	al.LogToolInvocation(NewToolInvocation(testToolEvent, "x").Complete(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, "level=INFO msg=tool_executed") {
		t.Errorf("expected info line for success, got:\n%s", out)
	}
	if !strings.Contains(out, "level=WARN msg=tool_failed") {
		t.Errorf("expected warn line for failure, got:\n%s", out)
	}
	if strings.Contains(out, "bob@example.com") {
		t.Error("tool input must not be logged")
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	assert.NotNil(t, NewAuditLogger(nil).logger, "nil falls back to the default logger")

	var al *AuditLogger
	assert.NotPanics(t, func() {
		al.LogToolInvocation(NewToolInvocation(testToolSend, "").Complete(nil))
	})
}
