package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/assistant/internal/agent"
	"github.com/teemow/assistant/internal/tools/common"
)

// AskToolName is the MCP tool that routes free text like the chat loop does.
const AskToolName = "assistant_ask"

const inputArgument = "input"

// Asker routes one utterance and returns the reply.
type Asker interface {
	Route(ctx context.Context, utterance string) (string, error)
}

// MCPServerConfig configures the MCP tool server.
type MCPServerConfig struct {
	Name    string
	Version string

	// Registry holds the tools exposed one to one as MCP tools.
	Registry *agent.Registry

	// Asker backs the assistant_ask tool. It is not registered when nil.
	Asker Asker

	Logger *slog.Logger
}

// NewMCPServer creates an MCP server exposing every registered tool with a
// single string argument named "input", plus assistant_ask.
func NewMCPServer(config MCPServerConfig) (*mcpserver.MCPServer, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("tool registry is required for MCP server")
	}
	if config.Name == "" {
		config.Name = "assistant"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := mcpserver.NewMCPServer(config.Name, config.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithRecovery(),
	)

	for _, t := range config.Registry.Tools() {
		tool := mcp.NewTool(t.Name,
			mcp.WithDescription(t.Description),
			mcp.WithString(inputArgument,
				mcp.Description("Tool input, as the router would pass it"),
			),
		)
		s.AddTool(tool, toolHandler(t, config.Logger))
	}

	if config.Asker != nil {
		ask := mcp.NewTool(AskToolName,
			mcp.WithDescription("Ask the assistant in plain language. The request is routed to the matching tool, or answered directly."),
			mcp.WithString(inputArgument,
				mcp.Required(),
				mcp.Description("What you want the assistant to do"),
			),
		)
		s.AddTool(ask, askHandler(config.Asker, config.Logger))
	}

	return s, nil
}

// ServeStdio serves s over r and w until ctx is done or the input closes.
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer, r io.Reader, w io.Writer) error {
	stdio := mcpserver.NewStdioServer(s)
	if err := stdio.Listen(ctx, r, w); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server stopped with error: %w", err)
	}
	return nil
}

func toolHandler(t common.Tool, logger *slog.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		input, _ := args[inputArgument].(string)

		out, err := t.Handler(common.WithSource(ctx, common.SourceMCP), input)
		if err != nil {
			logger.Warn("mcp tool call failed", "tool", t.Name, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", t.Name, err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

func askHandler(a Asker, logger *slog.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		input, ok := args[inputArgument].(string)
		if !ok || input == "" {
			return mcp.NewToolResultError(inputArgument + " is required"), nil
		}

		out, err := a.Route(common.WithSource(ctx, common.SourceMCP), input)
		if err != nil {
			logger.Warn("mcp ask failed", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
