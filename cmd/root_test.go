package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/assistant/internal/browser"
	"github.com/teemow/assistant/internal/config"
	"github.com/teemow/assistant/internal/tools/browser_tools"
	"github.com/teemow/assistant/internal/tools/calendar_tools"
	"github.com/teemow/assistant/internal/tools/gmail_tools"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearAssistantEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvOllamaURL, config.EnvModel, config.EnvTimezone,
		config.EnvCredentialsFile, config.EnvTokenFile,
		config.EnvBrowserHeadless, config.EnvBrowserMaxSteps, config.EnvMetricsAddr,
	} {
		unsetEnv(t, key)
	}
}

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearAssistantEnv(t)

	cfg, err := loadConfig(globalOptions{}, changedSet())
	require.NoError(t, err)

	assert.Equal(t, config.DefaultOllamaURL, cfg.OllamaURL)
	assert.Equal(t, config.DefaultModel, cfg.Model)
	assert.Equal(t, config.DefaultTimezone, cfg.Timezone)
	assert.Equal(t, config.DefaultCredentialsFile, cfg.CredentialsFile)
	assert.Equal(t, config.DefaultTokenFile(), cfg.TokenFile)
	assert.Empty(t, cfg.MetricsAddr)
	assert.False(t, cfg.Debug)
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	clearAssistantEnv(t)
	t.Setenv(config.EnvModel, "mistral")
	t.Setenv(config.EnvTimezone, "Europe/Berlin")

	opts := globalOptions{
		model:       "qwen2.5",
		metricsAddr: ":9191",
		timezone:    "ignored/not-changed",
		debug:       true,
	}
	cfg, err := loadConfig(opts, changedSet("model", "metrics-addr"))
	require.NoError(t, err)

	assert.Equal(t, "qwen2.5", cfg.Model)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone, "unchanged flags keep the environment value")
	assert.Equal(t, ":9191", cfg.MetricsAddr)
	assert.True(t, cfg.Debug)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearAssistantEnv(t)

	path := filepath.Join(t.TempDir(), "assistant.env")
	require.NoError(t, os.WriteFile(path, []byte(config.EnvModel+"=phi3\n"+config.EnvTokenFile+"=/tmp/tok.json\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv(config.EnvModel)
		_ = os.Unsetenv(config.EnvTokenFile)
	})

	cfg, err := loadConfig(globalOptions{envFile: path}, changedSet())
	require.NoError(t, err)
	assert.Equal(t, "phi3", cfg.Model)
	assert.Equal(t, "/tmp/tok.json", cfg.TokenFile)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearAssistantEnv(t)

	t.Run("missing env file", func(t *testing.T) {
		_, err := loadConfig(globalOptions{envFile: filepath.Join(t.TempDir(), "nope.env")}, changedSet())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load env file")
	})

	t.Run("bad timezone", func(t *testing.T) {
		_, err := loadConfig(globalOptions{timezone: "Mars/Olympus"}, changedSet("timezone"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("empty model", func(t *testing.T) {
		_, err := loadConfig(globalOptions{}, changedSet("model"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model must not be empty")
	})
}

func TestBuildTools_Order(t *testing.T) {
	names := func(d toolDeps) []string {
		var out []string
		for _, tool := range buildTools(d) {
			out = append(out, tool.Name)
		}
		return out
	}

	base := []string{
		calendar_tools.CreateEventToolName,
		gmail_tools.ReadUnreadToolName,
		gmail_tools.SendEmailToolName,
		gmail_tools.SummarizeLatestToolName,
	}
	assert.Equal(t, base, names(toolDeps{location: time.UTC}))
	assert.Equal(t, append(base, browser_tools.BrowserUseToolName),
		names(toolDeps{location: time.UTC, browser: browser.NewAgent(nil, nil)}))
}

func TestGenerateDocs(t *testing.T) {
	markdown, err := generateDocs()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(markdown, "# Tools Reference\n"))
	assert.Contains(t, markdown, "You are a strict AI tool router.")
	for _, name := range []string{
		"create_calendar_event",
		"read_unread_emails",
		"send_email",
		"get_and_summarize_latest_email",
		"browser_use",
		"assistant_ask",
	} {
		assert.Contains(t, markdown, "### "+name+"\n", name)
	}
	assert.Contains(t, markdown, "- `input` (required): What you want the assistant to do")
	assert.Less(t,
		strings.Index(markdown, "### create_calendar_event"),
		strings.Index(markdown, "### read_unread_emails"),
		"router tools keep registry order")
}

func TestRootCommand(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"chat", "ask", "auth", "serve", "generate-docs", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"env-file", "debug", "credentials-file", "token-file", "ollama-url", "model", "timezone", "metrics-addr"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Equal(t, "assistant version 1.2.3\n", out.String())
}

func TestAskCommand_RequiresRequest(t *testing.T) {
	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"ask"})
	t.Cleanup(func() {
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
