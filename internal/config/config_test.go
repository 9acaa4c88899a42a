package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{EnvOllamaURL, EnvModel, EnvTimezone, EnvCredentialsFile, EnvTokenFile, EnvBrowserHeadless, EnvBrowserMaxSteps, EnvMetricsAddr,
		EnvInstrumentation, EnvMetricsExporter, EnvTracingExporter, EnvOTLPEndpoint} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, DefaultOllamaURL, cfg.OllamaURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultCredentialsFile, cfg.CredentialsFile)
	assert.Equal(t, DefaultTokenFile(), cfg.TokenFile)
	assert.True(t, cfg.BrowserHeadless)
	assert.Equal(t, DefaultBrowserMaxSteps, cfg.BrowserMaxSteps)
	assert.Empty(t, cfg.MetricsAddr)
	assert.True(t, cfg.Instrumentation)
	assert.Equal(t, ExporterPrometheus, cfg.MetricsExporter)
	assert.Equal(t, ExporterNone, cfg.TracingExporter)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvOllamaURL, "http://gpu-box:11434")
	t.Setenv(EnvModel, "qwen2.5:7b")
	t.Setenv(EnvTimezone, "Europe/Berlin")
	t.Setenv(EnvTokenFile, "/tmp/token.json")
	t.Setenv(EnvBrowserHeadless, "false")
	t.Setenv(EnvBrowserMaxSteps, "5")
	t.Setenv(EnvMetricsAddr, ":9090")
	t.Setenv(EnvInstrumentation, "false")
	t.Setenv(EnvMetricsExporter, ExporterOTLP)
	t.Setenv(EnvTracingExporter, ExporterOTLP)
	t.Setenv(EnvOTLPEndpoint, "http://collector:4318")

	cfg := FromEnv()

	assert.Equal(t, "http://gpu-box:11434", cfg.OllamaURL)
	assert.Equal(t, "qwen2.5:7b", cfg.Model)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "/tmp/token.json", cfg.TokenFile)
	assert.False(t, cfg.BrowserHeadless)
	assert.Equal(t, 5, cfg.BrowserMaxSteps)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.False(t, cfg.Instrumentation)
	assert.Equal(t, ExporterOTLP, cfg.MetricsExporter)
	assert.Equal(t, ExporterOTLP, cfg.TracingExporter)
	assert.Equal(t, "http://collector:4318", cfg.OTLPEndpoint)
}

func TestFromEnv_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv(EnvBrowserMaxSteps, "many")
	t.Setenv(EnvBrowserHeadless, "sometimes")

	cfg := FromEnv()

	assert.Equal(t, DefaultBrowserMaxSteps, cfg.BrowserMaxSteps)
	assert.True(t, cfg.BrowserHeadless)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			OllamaURL:       DefaultOllamaURL,
			Model:           DefaultModel,
			Timezone:        "UTC",
			CredentialsFile: DefaultCredentialsFile,
			TokenFile:       "token.json",
			BrowserMaxSteps: 20,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty url", mutate: func(c *Config) { c.OllamaURL = "" }, wantErr: "ollama URL"},
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }, wantErr: "model"},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		{name: "empty credentials", mutate: func(c *Config) { c.CredentialsFile = "" }, wantErr: "credentials"},
		{name: "empty token", mutate: func(c *Config) { c.TokenFile = "" }, wantErr: "token"},
		{name: "zero steps", mutate: func(c *Config) { c.BrowserMaxSteps = 0 }, wantErr: "max steps"},
		{
			name:    "unknown metrics exporter",
			mutate:  func(c *Config) { c.Instrumentation = true; c.MetricsExporter = "graphite" },
			wantErr: "invalid metrics exporter",
		},
		{
			name:    "unknown tracing exporter",
			mutate:  func(c *Config) { c.Instrumentation = true; c.TracingExporter = "zipkin" },
			wantErr: "invalid tracing exporter",
		},
		{
			name:    "otlp without endpoint",
			mutate:  func(c *Config) { c.Instrumentation = true; c.TracingExporter = ExporterOTLP },
			wantErr: EnvOTLPEndpoint,
		},
		{
			name: "otlp with endpoint",
			mutate: func(c *Config) {
				c.Instrumentation = true
				c.MetricsExporter = ExporterOTLP
				c.OTLPEndpoint = "http://localhost:4318"
			},
		},
		{
			name:   "exporters ignored when instrumentation is off",
			mutate: func(c *Config) { c.MetricsExporter = "graphite" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := Config{Timezone: "Asia/Kolkata"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ASSISTANT_MODEL=from-file\nASSISTANT_TIMEZONE=UTC\n"), 0600))

	// Variables already in the environment win over the file
	t.Setenv(EnvTimezone, "Europe/Paris")
	t.Setenv(EnvModel, "")
	require.NoError(t, os.Unsetenv(EnvModel))

	require.NoError(t, LoadEnvFile(path))
	t.Cleanup(func() { _ = os.Unsetenv(EnvModel) })

	assert.Equal(t, "from-file", os.Getenv(EnvModel))
	assert.Equal(t, "Europe/Paris", os.Getenv(EnvTimezone))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)

	// No explicit path and no .env in the working directory is fine
	t.Chdir(t.TempDir())
	assert.NoError(t, LoadEnvFile(""))
}
