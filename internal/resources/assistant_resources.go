package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/assistant/internal/agent"
)

const (
	RouterPromptURI = "assistant://router/prompt"
	StatusURI       = "assistant://status"
)

// pingTimeout bounds the model check done when the status is read.
const pingTimeout = 3 * time.Second

// Pinger reports whether the language model is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Info describes the running assistant.
type Info struct {
	Version   string
	Model     string
	OllamaURL string
	Timezone  string
	Registry  *agent.Registry

	// Pinger checks the model when the status is read. Optional.
	Pinger Pinger
}

// Status is the JSON document served at assistant://status.
type Status struct {
	Version        string   `json:"version"`
	Model          string   `json:"model"`
	OllamaURL      string   `json:"ollamaUrl"`
	Timezone       string   `json:"timezone"`
	Tools          []string `json:"tools"`
	ModelAvailable *bool    `json:"modelAvailable,omitempty"`
	ModelError     string   `json:"modelError,omitempty"`
}

// RegisterAssistantResources registers the router prompt and status resources.
func RegisterAssistantResources(s *mcpserver.MCPServer, info Info) error {
	if info.Registry == nil {
		return fmt.Errorf("tool registry is required for assistant resources")
	}

	promptResource := mcp.NewResource(
		RouterPromptURI,
		"Router Prompt",
		mcp.WithResourceDescription("The prompt the language model receives before each request"),
		mcp.WithMIMEType("text/plain"),
	)
	s.AddResource(promptResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleRouterPrompt(ctx, request, info)
	})

	statusResource := mcp.NewResource(
		StatusURI,
		"Assistant Status",
		mcp.WithResourceDescription("Version, model, time zone and registered tools"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(statusResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleStatus(ctx, request, info)
	})

	return nil
}

func handleRouterPrompt(_ context.Context, request mcp.ReadResourceRequest, info Info) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.TrimPrefix(agent.SystemPrompt(info.Registry), "\n"),
		},
	}, nil
}

func handleStatus(ctx context.Context, request mcp.ReadResourceRequest, info Info) ([]mcp.ResourceContents, error) {
	status := Status{
		Version:   info.Version,
		Model:     info.Model,
		OllamaURL: info.OllamaURL,
		Timezone:  info.Timezone,
		Tools:     info.Registry.Names(),
	}

	if info.Pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := info.Pinger.Ping(pingCtx)
		cancel()

		available := err == nil
		status.ModelAvailable = &available
		if err != nil {
			status.ModelError = err.Error()
		}
	}

	jsonData, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
