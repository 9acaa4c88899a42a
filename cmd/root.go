package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant/internal/config"
)

// rootCmd represents the base command for the assistant application
var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Local personal assistant for Google Calendar, Gmail and the web",
	Long: `assistant routes plain-language requests to a small set of tools using a
language model served by a local Ollama instance.

Tools:
  - create_calendar_event: schedule a Google Calendar event
  - read_unread_emails: list recent unread Gmail messages
  - send_email: send a message ("recipient | subject | message")
  - get_and_summarize_latest_email: summarize the newest message
  - browser_use: drive a Chrome browser (chat --browser)

It can run as:
  - An interactive chat loop (default)
  - A one-shot command (ask)
  - An MCP (Model Context Protocol) server over stdio (serve)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// globalOptions holds the persistent flags shared by all commands.
type globalOptions struct {
	envFile         string
	debug           bool
	credentialsFile string
	tokenFile       string
	ollamaURL       string
	model           string
	timezone        string
	metricsAddr     string
}

var globals globalOptions

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "assistant version %s\n" .Version}}`)

	// If no subcommand is provided, start the chat loop
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.envFile, "env-file", "", "Load environment variables from this dotenv file (default: .env if present)")
	flags.BoolVar(&globals.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&globals.credentialsFile, "credentials-file", "", fmt.Sprintf("Google OAuth client secret JSON. Can also use %s env var. (default %q)", config.EnvCredentialsFile, config.DefaultCredentialsFile))
	flags.StringVar(&globals.tokenFile, "token-file", "", fmt.Sprintf("Where the Google token is cached. Can also use %s env var.", config.EnvTokenFile))
	flags.StringVar(&globals.ollamaURL, "ollama-url", "", fmt.Sprintf("Ollama base URL. Can also use %s env var. (default %q)", config.EnvOllamaURL, config.DefaultOllamaURL))
	flags.StringVar(&globals.model, "model", "", fmt.Sprintf("Ollama model name. Can also use %s env var. (default %q)", config.EnvModel, config.DefaultModel))
	flags.StringVar(&globals.timezone, "timezone", "", fmt.Sprintf("IANA time zone for events. Can also use %s env var. (default %q)", config.EnvTimezone, config.DefaultTimezone))
	flags.StringVar(&globals.metricsAddr, "metrics-addr", "", fmt.Sprintf("Serve Prometheus metrics on this address (e.g. :9090). Can also use %s env var.", config.EnvMetricsAddr))

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig resolves the configuration: the dotenv file first, then the
// environment, then any flag set explicitly on the command line.
func loadConfig(opts globalOptions, changed func(name string) bool) (config.Config, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return config.Config{}, err
	}

	cfg := config.FromEnv()
	if changed("credentials-file") {
		cfg.CredentialsFile = opts.credentialsFile
	}
	if changed("token-file") {
		cfg.TokenFile = opts.tokenFile
	}
	if changed("ollama-url") {
		cfg.OllamaURL = opts.ollamaURL
	}
	if changed("model") {
		cfg.Model = opts.model
	}
	if changed("timezone") {
		cfg.Timezone = opts.timezone
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	cfg.Debug = opts.debug

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// configFor loads the configuration for a running command.
func configFor(cmd *cobra.Command) (config.Config, error) {
	return loadConfig(globals, func(name string) bool {
		return cmd.Flags().Changed(name)
	})
}
