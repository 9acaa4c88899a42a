package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"strings"
)

// Attribute keys shared by the assistant's loggers.
const (
	KeyService   = "service"
	KeyOperation = "operation"
	KeyTool      = "tool"
	KeyModel     = "model"
	KeyRecipient = "recipient"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Status values. Kept in sync with the instrumentation labels, which cannot be
// imported here.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// New returns a text logger writing to w. Debug enables debug-level output.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithService tags every record of logger with the backend it talks to
// (gmail, calendar, ollama, browser).
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// Operation names a Google API call, e.g. events.insert.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool names the assistant tool being dispatched.
func Tool(name string) slog.Attr {
	return slog.String(KeyTool, name)
}

// Model names the Ollama model.
func Model(model string) slog.Attr {
	return slog.String(KeyModel, model)
}

func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err is omitted from the output when err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Recipient logs an email address as a short case-insensitive hash so sent
// mail can be correlated without writing the address to the log.
func Recipient(address string) slog.Attr {
	return slog.String(KeyRecipient, hashAddress(address))
}

func hashAddress(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(address))
	return "sha256:" + hex.EncodeToString(sum[:8])
}

// TokenLength logs only the length of an OAuth token under key.
func TokenLength(key, token string) slog.Attr {
	return slog.Int(key+"_length", len(token))
}
