package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/teemow/assistant/internal/llm"
)

// ErrNoToolCall means the model answered without a tool call.
var ErrNoToolCall = errors.New("no tool call in model output")

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	Tool  string
	Input string
}

// ParseToolCall extracts the {"tool": ..., "input": ...} object from model
// output. A missing or null input becomes "", and non-string inputs are
// passed on as compact JSON. Output without a brace-delimited span, or
// whose object names no tool, yields ErrNoToolCall.
func ParseToolCall(text string) (ToolCall, error) {
	raw, ok := llm.ExtractJSON(text)
	if !ok {
		return ToolCall{}, ErrNoToolCall
	}

	var wire struct {
		Tool  *string         `json:"tool"`
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return ToolCall{}, fmt.Errorf("invalid tool call JSON: %w", err)
	}
	if wire.Tool == nil || *wire.Tool == "" {
		return ToolCall{}, ErrNoToolCall
	}

	input, err := decodeInput(wire.Input)
	if err != nil {
		return ToolCall{}, err
	}
	return ToolCall{Tool: *wire.Tool, Input: input}, nil
}

func decodeInput(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid tool input: %w", err)
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("invalid tool input: %w", err)
	}
	return buf.String(), nil
}
