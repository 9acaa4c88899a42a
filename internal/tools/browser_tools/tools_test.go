package browser_tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/assistant/internal/browser"
)

type fakeRunner struct {
	task string
	res  *browser.Result
	err  error
}

func (f *fakeRunner) Run(_ context.Context, task string) (*browser.Result, error) {
	f.task = task
	return f.res, f.err
}

func TestBrowserUseHandler(t *testing.T) {
	r := &fakeRunner{res: &browser.Result{Done: true, Summary: "Opened go.dev and read the release notes."}}

	out, err := BrowserUseHandler(r)(context.Background(), "  open go.dev and read the release notes ")
	require.NoError(t, err)
	assert.Equal(t, "Opened go.dev and read the release notes.", out)

	assert.True(t, strings.HasPrefix(r.task, "\nSTRICT EXECUTION MODE.\n"))
	assert.Contains(t, r.task, "USER TASK:\nopen go.dev and read the release notes\n\nStop immediately after completing the task.")
	assert.True(t, strings.HasSuffix(r.task, "Return a short summary of actions performed.\n"))
}

func TestBrowserUseHandler_PartialResult(t *testing.T) {
	r := &fakeRunner{res: &browser.Result{Summary: "Actions performed:\n1. navigate to https://x.example\n\nStopped: step limit of 20 reached before the task was completed."}}

	out, err := BrowserUseHandler(r)(context.Background(), "x")
	require.NoError(t, err)
	assert.Contains(t, out, "step limit of 20 reached")
}

func TestBrowserUseHandler_Error(t *testing.T) {
	r := &fakeRunner{err: errors.New("chrome not found")}

	_, err := BrowserUseHandler(r)(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser task failed: chrome not found")
}

func TestStrictTask_ForbidsSideQuests(t *testing.T) {
	task := StrictTask("book a table")
	for _, rule := range []string{
		"- Visit unrelated websites",
		"- Navigate to Wikipedia",
		"- Take screenshots unless requested",
		"If something fails, retry the SAME task.",
	} {
		assert.Contains(t, task, rule)
	}
}

func TestTools(t *testing.T) {
	tools := Tools(&fakeRunner{})
	require.Len(t, tools, 1)
	assert.Equal(t, BrowserUseToolName, tools[0].Name)
}
