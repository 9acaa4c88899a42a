package llm

import (
	"context"
	"strings"
)

// Model produces a text completion for a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f ModelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Ask runs prompt through m and returns the trimmed completion.
func Ask(ctx context.Context, m Model, prompt string) (string, error) {
	out, err := m.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
