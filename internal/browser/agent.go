package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/llm"
	"github.com/teemow/assistant/internal/logging"
)

const (
	// DefaultMaxSteps bounds an agent run when no limit is configured.
	DefaultMaxSteps = 20

	maxObservedText     = 3000
	maxObservedElements = 60
	maxExtractedText    = 2000
	maxHistoryResult    = 300
)

// Step records one iteration of the agent loop.
type Step struct {
	Number int
	Action Action
	// Result is the driver outcome shown back to the model.
	Result string
	Err    error
}

func (s Step) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%d. %s (failed: %v)", s.Number, s.Action, s.Err)
	}
	if s.Result != "" {
		return fmt.Sprintf("%d. %s -> %s", s.Number, s.Action, s.Result)
	}
	return fmt.Sprintf("%d. %s", s.Number, s.Action)
}

// Result is the outcome of an agent run.
type Result struct {
	// Done is true when the model declared the task complete.
	Done    bool
	Summary string
	Steps   []Step
	// Extracted holds the text returned by extract actions, in order.
	Extracted []string
}

func (r *Result) String() string {
	return r.Summary
}

// Agent drives a browser step by step with a language model choosing each
// action.
type Agent struct {
	model     llm.Model
	newDriver DriverFactory
	maxSteps  int
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithMaxSteps sets the step limit. Values below 1 keep the default.
func WithMaxSteps(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logging.WithService(logger, instrumentation.ServiceBrowser)
	}
}

// WithMetrics sets the recorder for step metrics.
func WithMetrics(m *instrumentation.Metrics) AgentOption {
	return func(a *Agent) {
		a.metrics = m
	}
}

// NewAgent creates an agent that starts a fresh browser via newDriver for
// every run.
func NewAgent(model llm.Model, newDriver DriverFactory, opts ...AgentOption) *Agent {
	a := &Agent{
		model:     model,
		newDriver: newDriver,
		maxSteps:  DefaultMaxSteps,
		logger:    logging.WithService(slog.Default(), instrumentation.ServiceBrowser),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxSteps returns the step limit.
func (a *Agent) MaxSteps() int {
	return a.maxSteps
}

// Run performs task. The browser is closed before Run returns.
//
// A run ends when the model answers "done", when the step limit is reached
// (the result then summarizes what was done so far), or with an error when
// the browser cannot start, the model fails or ctx is canceled.
func (a *Agent) Run(ctx context.Context, task string) (*Result, error) {
	driver, err := a.newDriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			a.logger.Warn("failed to close browser", logging.Err(err))
		}
	}()

	res := &Result{}
	for n := 1; n <= a.maxSteps; n++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		obs, err := driver.Observe(ctx)
		if err != nil {
			a.logger.Debug("observe failed", slog.Int("step", n), logging.Err(err))
			obs = &Observation{Text: "could not read page: " + err.Error()}
		}

		out, err := a.model.Generate(ctx, stepPrompt(task, res.Steps, obs, n, a.maxSteps))
		if err != nil {
			return res, fmt.Errorf("model failed at step %d: %w", n, err)
		}

		action, err := parseAction(out)
		if err != nil {
			// Shown to the model in the next prompt so it can correct itself.
			step := Step{Number: n, Action: Action{Action: actionInvalid}, Err: err}
			a.record(ctx, n, step)
			res.Steps = append(res.Steps, step)
			continue
		}

		if action.Action == ActionDone {
			a.record(ctx, n, Step{Number: n, Action: action})
			res.Done = true
			res.Summary = strings.TrimSpace(action.Summary)
			if res.Summary == "" {
				res.Summary = actionsSummary(res.Steps)
			}
			return res, nil
		}

		step := a.execute(ctx, driver, n, action)
		a.record(ctx, n, step)
		res.Steps = append(res.Steps, step)
		if action.Action == ActionExtract && step.Err == nil {
			res.Extracted = append(res.Extracted, step.Result)
		}
	}

	res.Summary = partialSummary(res, a.maxSteps)
	a.logger.Info("browser task stopped at step limit", slog.Int("steps", a.maxSteps))
	return res, nil
}

func (a *Agent) execute(ctx context.Context, d Driver, n int, action Action) Step {
	step := Step{Number: n, Action: action}
	switch action.Action {
	case ActionNavigate:
		step.Action.URL = normalizeURL(action.URL)
		step.Err = d.Navigate(ctx, step.Action.URL)
	case ActionClick:
		step.Err = d.Click(ctx, action.Selector)
	case ActionType:
		step.Err = d.Type(ctx, action.Selector, action.Text)
	case ActionScroll:
		dir := action.Direction
		if dir == "" {
			dir = "down"
		}
		step.Err = d.Scroll(ctx, dir)
	case ActionExtract:
		text, err := d.Extract(ctx, action.Selector)
		step.Result = truncate(strings.TrimSpace(text), maxExtractedText)
		step.Err = err
	}
	return step
}

func (a *Agent) record(ctx context.Context, n int, step Step) {
	status := instrumentation.StatusSuccess
	if step.Err != nil {
		status = instrumentation.StatusError
	}
	a.metrics.RecordBrowserStep(ctx, step.Action.Action, status)

	instrumentation.AddBrowserStepEvent(ctx, n, step.Action.Action)

	a.logger.Debug("browser step",
		slog.Int("step", n),
		slog.String("action", step.Action.String()),
		logging.Status(status),
		logging.Err(step.Err))
}

// stepPrompt asks the model for the next action.
func stepPrompt(task string, history []Step, obs *Observation, n, maxSteps int) string {
	var b strings.Builder
	b.WriteString("You control a web browser to complete a task.\n\n")
	b.WriteString("TASK:\n")
	b.WriteString(strings.TrimSpace(task))
	b.WriteString("\n\n")

	b.WriteString("Reply with exactly one JSON object choosing the next action:\n")
	b.WriteString(`{"action": "navigate", "url": "https://..."}` + "\n")
	b.WriteString(`{"action": "click", "selector": "<css selector>"}` + "\n")
	b.WriteString(`{"action": "type", "selector": "<css selector>", "text": "..."}` + "\n")
	b.WriteString(`{"action": "scroll", "direction": "down"}` + "\n")
	b.WriteString(`{"action": "extract", "selector": "<css selector or empty for whole page>"}` + "\n")
	b.WriteString(`{"action": "done", "summary": "short summary of actions performed"}` + "\n")
	b.WriteString("Use only selectors listed below. No explanations.\n\n")

	fmt.Fprintf(&b, "Step %d of %d.\n", n, maxSteps)
	b.WriteString("Previous steps:\n")
	if len(history) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range history {
		s.Result = truncate(s.Result, maxHistoryResult)
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent page:\n")
	b.WriteString(obs.render(maxObservedText, maxObservedElements))
	return b.String()
}

// actionsSummary lists the performed actions.
func actionsSummary(steps []Step) string {
	if len(steps) == 0 {
		return "No actions were performed."
	}
	lines := make([]string, 0, len(steps)+1)
	lines = append(lines, "Actions performed:")
	for _, s := range steps {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

func partialSummary(res *Result, maxSteps int) string {
	var b strings.Builder
	b.WriteString(actionsSummary(res.Steps))
	if len(res.Extracted) > 0 {
		b.WriteString("\n\nExtracted:\n")
		b.WriteString(strings.Join(res.Extracted, "\n---\n"))
	}
	fmt.Fprintf(&b, "\n\nStopped: step limit of %d reached before the task was completed.", maxSteps)
	return b.String()
}
