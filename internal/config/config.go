package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when neither a flag nor an environment variable is set.
const (
	DefaultOllamaURL       = "http://localhost:11434"
	DefaultModel           = "llama3.2"
	DefaultTimezone        = "Asia/Kolkata"
	DefaultCredentialsFile = "credentials.json"
	DefaultBrowserMaxSteps = 20
)

// Environment variable names.
const (
	EnvOllamaURL       = "ASSISTANT_OLLAMA_URL"
	EnvModel           = "ASSISTANT_MODEL"
	EnvTimezone        = "ASSISTANT_TIMEZONE"
	EnvCredentialsFile = "ASSISTANT_CREDENTIALS_FILE"
	EnvTokenFile       = "ASSISTANT_TOKEN_FILE"
	EnvBrowserHeadless = "ASSISTANT_BROWSER_HEADLESS"
	EnvBrowserMaxSteps = "ASSISTANT_BROWSER_MAX_STEPS"
	EnvMetricsAddr     = "METRICS_ADDR"

	EnvInstrumentation = "INSTRUMENTATION_ENABLED"
	EnvMetricsExporter = "METRICS_EXPORTER"
	EnvTracingExporter = "TRACING_EXPORTER"
	EnvOTLPEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Exporter names for MetricsExporter and TracingExporter.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config holds the runtime settings shared by every command.
type Config struct {
	// OllamaURL is the base URL of the Ollama server.
	OllamaURL string

	// Model is the Ollama model used for routing and text extraction.
	Model string

	// Timezone is the IANA zone events are created in and dates are resolved in.
	Timezone string

	// CredentialsFile is the Google OAuth client secret JSON.
	CredentialsFile string

	// TokenFile is where the OAuth token is cached between runs.
	TokenFile string

	// BrowserHeadless runs Chrome without a window.
	BrowserHeadless bool

	// BrowserMaxSteps bounds the browser agent loop.
	BrowserMaxSteps int

	// MetricsAddr enables the Prometheus scrape endpoint when set (e.g. ":9090").
	MetricsAddr string

	// Instrumentation enables OpenTelemetry metrics and traces.
	Instrumentation bool

	// MetricsExporter is prometheus, otlp or stdout.
	MetricsExporter string

	// TracingExporter is none, otlp or stdout.
	TracingExporter string

	// OTLPEndpoint is the collector base URL, e.g. http://localhost:4318.
	OTLPEndpoint string

	// Debug enables debug level logging.
	Debug bool
}

// FromEnv returns a Config populated from environment variables, falling back
// to the package defaults.
func FromEnv() Config {
	return Config{
		OllamaURL:       getEnvOrDefault(EnvOllamaURL, DefaultOllamaURL),
		Model:           getEnvOrDefault(EnvModel, DefaultModel),
		Timezone:        getEnvOrDefault(EnvTimezone, DefaultTimezone),
		CredentialsFile: getEnvOrDefault(EnvCredentialsFile, DefaultCredentialsFile),
		TokenFile:       getEnvOrDefault(EnvTokenFile, DefaultTokenFile()),
		BrowserHeadless: getEnvBoolOrDefault(EnvBrowserHeadless, true),
		BrowserMaxSteps: getEnvIntOrDefault(EnvBrowserMaxSteps, DefaultBrowserMaxSteps),
		MetricsAddr:     os.Getenv(EnvMetricsAddr),
		Instrumentation: getEnvBoolOrDefault(EnvInstrumentation, true),
		MetricsExporter: getEnvOrDefault(EnvMetricsExporter, ExporterPrometheus),
		TracingExporter: getEnvOrDefault(EnvTracingExporter, ExporterNone),
		OTLPEndpoint:    os.Getenv(EnvOTLPEndpoint),
	}
}

// Validate checks the configuration for values that would fail later at runtime.
func (c *Config) Validate() error {
	if c.OllamaURL == "" {
		return errors.New("ollama URL must not be empty")
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.CredentialsFile == "" {
		return errors.New("credentials file must not be empty")
	}
	if c.TokenFile == "" {
		return errors.New("token file must not be empty")
	}
	if c.BrowserMaxSteps < 1 {
		return fmt.Errorf("browser max steps must be at least 1, got %d", c.BrowserMaxSteps)
	}
	if c.Instrumentation {
		return c.validateTelemetry()
	}
	return nil
}

func (c *Config) validateTelemetry() error {
	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}
	switch c.TracingExporter {
	case "", ExporterNone, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: none, otlp, stdout", c.TracingExporter)
	}
	if (c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP) && c.OTLPEndpoint == "" {
		return fmt.Errorf("%s must be set for the otlp exporter", EnvOTLPEndpoint)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadEnvFile loads variables from a dotenv file without overriding variables
// already present in the environment. An empty path loads ".env" from the
// working directory if it exists; an explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// DefaultTokenFile returns the default OAuth token location inside the user
// cache directory. It falls back to a file in the working directory when no
// cache directory can be determined.
func DefaultTokenFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "google.token"
	}
	return filepath.Join(dir, "assistant", "google.token")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
