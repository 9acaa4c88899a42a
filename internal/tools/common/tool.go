package common

import (
	"context"
	"strings"
)

// Handler runs a tool on its raw input string. A returned error means the
// tool failed unexpectedly; outcomes the user should read, including "nothing
// found" and input format problems, are returned as text with a nil error.
type Handler func(ctx context.Context, input string) (string, error)

// Tool is a named capability the router can dispatch to.
type Tool struct {
	Name        string
	Description string
	Handler     Handler
}

type sourceKey struct{}

// Sources of a tool call, recorded in the audit log.
const (
	SourceChat = "chat"
	SourceAsk  = "ask"
	SourceMCP  = "mcp"
)

// WithSource records where tool calls made with ctx originate.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFromContext returns the source set by WithSource, or "".
func SourceFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sourceKey{}).(string)
	return s
}

// CleanModelText strips whitespace and the quotes models like to wrap short
// answers in.
func CleanModelText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
