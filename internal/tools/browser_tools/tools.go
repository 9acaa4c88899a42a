package browser_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/assistant/internal/browser"
	"github.com/teemow/assistant/internal/tools/common"
)

// BrowserUseToolName is the router name of the browser tool.
const BrowserUseToolName = "browser_use"

// Runner performs a browser task. The browser must be released before Run
// returns.
type Runner interface {
	Run(ctx context.Context, task string) (*browser.Result, error)
}

const strictTaskTemplate = `
STRICT EXECUTION MODE.

You MUST only perform the task below.
You are NOT allowed to:
- Visit unrelated websites
- Search random topics
- Compare products unless explicitly asked
- Navigate to Wikipedia
- Change the goal
- Perform additional research
- Take screenshots unless requested

If something fails, retry the SAME task.
Do not invent new goals.

USER TASK:
%s

Stop immediately after completing the task.
Return a short summary of actions performed.
`

// StrictTask wraps a user task in the strict execution template.
func StrictTask(task string) string {
	return fmt.Sprintf(strictTaskTemplate, strings.TrimSpace(task))
}

// BrowserUseHandler runs the input as a browser task and returns the agent's
// summary.
func BrowserUseHandler(r Runner) common.Handler {
	return func(ctx context.Context, task string) (string, error) {
		res, err := r.Run(ctx, StrictTask(task))
		if err != nil {
			return "", fmt.Errorf("browser task failed: %w", err)
		}
		return res.String(), nil
	}
}

// Tools returns the browser tools.
func Tools(r Runner) []common.Tool {
	return []common.Tool{
		{
			Name:        BrowserUseToolName,
			Description: "Use browser to automate web tasks.",
			Handler:     BrowserUseHandler(r),
		},
	}
}
