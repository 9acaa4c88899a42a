package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teemow/assistant/internal/instrumentation"
	"github.com/teemow/assistant/internal/logging"
)

const (
	// DefaultBaseURL is where a local Ollama listens by default.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is used when no model is configured.
	DefaultModel = "llama3.2"

	// maxErrorBody caps how much of a failed response is quoted in errors.
	maxErrorBody = 512
)

// Ollama is a Model backed by the Ollama HTTP API.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// OllamaOption configures an Ollama client.
type OllamaOption func(*Ollama)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(o *Ollama) {
		o.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OllamaOption {
	return func(o *Ollama) {
		o.logger = logging.WithService(logger, instrumentation.ServiceOllama)
	}
}

// WithMetrics sets the recorder for model request metrics.
func WithMetrics(m *instrumentation.Metrics) OllamaOption {
	return func(o *Ollama) {
		o.metrics = m
	}
}

// NewOllama creates a client for the Ollama server at baseURL using model.
// Empty values fall back to DefaultBaseURL and DefaultModel.
func NewOllama(baseURL, model string, opts ...OllamaOption) *Ollama {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	o := &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		// No overall timeout: a cold model load can take minutes.
		// Requests are bounded by their context instead.
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: logging.WithService(slog.Default(), instrumentation.ServiceOllama),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name returns the configured model name.
func (o *Ollama) Name() string {
	return o.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate sends prompt as a single non-streaming completion at temperature 0
// and returns the response text.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := instrumentation.StartModelSpan(ctx, o.model, utf8.RuneCountInString(prompt))
	defer span.End()

	start := time.Now()
	text, err := o.generate(ctx, prompt)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	o.metrics.RecordModelRequest(ctx, o.model, status, duration)

	o.logger.Debug("model request completed",
		logging.Model(o.model),
		slog.Int("prompt_length", len(prompt)),
		slog.Int("response_length", len(text)),
		slog.Duration(logging.KeyDuration, duration),
		logging.Status(status))
	return text, err
}

func (o *Ollama) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	return out.Response, nil
}

// Models lists the models installed on the server. It doubles as a health
// check for the configured endpoint.
func (o *Ollama) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama is not reachable at %s: %w", o.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Ping reports whether the server is reachable and has the configured model.
func (o *Ollama) Ping(ctx context.Context) error {
	names, err := o.Models(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		// "llama3.2" matches "llama3.2:latest"
		if name == o.model || strings.TrimSuffix(name, ":latest") == o.model {
			return nil
		}
	}
	return fmt.Errorf("model %q is not available on %s (run: ollama pull %s)", o.model, o.baseURL, o.model)
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
