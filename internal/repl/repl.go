package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/teemow/assistant/internal/logging"
)

const (
	banner       = "AI Agent Running..."
	promptPrefix = "You: "
	replyPrefix  = "Agent: "

	maxLineSize = 1024 * 1024
)

// Router answers one utterance.
type Router interface {
	Route(ctx context.Context, utterance string) (string, error)
}

// Loop reads one line at a time, routes it and prints the answer.
type Loop struct {
	router Router
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// New creates a loop reading from in and writing the conversation to out.
func New(router Router, in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		router: router,
		in:     in,
		out:    out,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type line struct {
	text string
	err  error
}

// Run prints the banner and serves turns until the input ends or ctx is
// canceled, both of which return nil. Routing errors are printed and the
// loop continues.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan line)
	go l.read(ctx, lines)

	fmt.Fprintln(l.out, banner)
	for {
		fmt.Fprint(l.out, promptPrefix)

		var next line
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			return nil
		case next, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(l.out)
			return nil
		}
		if next.err != nil {
			return fmt.Errorf("failed to read input: %w", next.err)
		}

		utterance := strings.TrimSpace(next.text)
		if utterance == "" {
			continue
		}

		reply, err := l.router.Route(ctx, utterance)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(l.out)
				return nil
			}
			l.logger.Error("routing failed", logging.Err(err))
			fmt.Fprintf(l.out, "%serror: %v\n", replyPrefix, err)
			continue
		}
		fmt.Fprintln(l.out, replyPrefix+reply)
	}
}

// read scans lines from the input until EOF, a read error or ctx is done.
func (l *Loop) read(ctx context.Context, lines chan<- line) {
	defer close(lines)

	scanner := bufio.NewScanner(l.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		select {
		case lines <- line{text: scanner.Text()}:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		select {
		case lines <- line{err: err}:
		case <-ctx.Done():
		}
	}
}
