package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/assistant/internal/agent"
	"github.com/teemow/assistant/internal/browser"
	"github.com/teemow/assistant/internal/logging"
	"github.com/teemow/assistant/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate tool documentation",
		Long: `Generate markdown documentation for the assistant tools, including the
router prompt the model sees and the MCP tools exposed by "serve". The tools
are introspected, so no credentials or model are needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := generateDocs()
			if err != nil {
				return err
			}
			if outputFile == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// docsAsker stands in for the router; documentation never routes.
type docsAsker struct{}

func (docsAsker) Route(context.Context, string) (string, error) { return "", nil }

func generateDocs() (string, error) {
	// Handlers are never invoked, so the collaborators stay empty.
	registry, err := agent.NewRegistry(buildTools(toolDeps{
		location: time.UTC,
		browser:  browser.NewAgent(nil, nil),
	})...)
	if err != nil {
		return "", fmt.Errorf("failed to register tools: %w", err)
	}

	mcpSrv, err := server.NewMCPServer(server.MCPServerConfig{
		Version:  version,
		Registry: registry,
		Asker:    docsAsker{},
		Logger:   logging.Discard(),
	})
	if err != nil {
		return "", err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	return generateToolsMarkdown(registry, tools), nil
}

func generateToolsMarkdown(registry *agent.Registry, tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# Tools Reference\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Router Tools\n\n")
	sb.WriteString("Tools the model can pick in `chat` and `ask`, in the order they are offered. ")
	sb.WriteString("`browser_use` is only offered with `--browser`.\n\n")
	for _, t := range registry.Tools() {
		sb.WriteString(fmt.Sprintf("### %s\n\n", t.Name))
		if t.Description != "" {
			sb.WriteString(t.Description + "\n\n")
		}
	}

	sb.WriteString("## Router Prompt\n\n")
	sb.WriteString("```text\n")
	sb.WriteString(strings.TrimPrefix(agent.SystemPrompt(registry), "\n"))
	sb.WriteString("```\n\n")

	sb.WriteString("## MCP Tools\n\n")
	sb.WriteString("Tools exposed by `assistant serve`.\n\n")
	for _, tool := range tools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]interface{})
			if !ok {
				continue
			}

			requiredStr := "optional"
			if contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s): ", name, requiredStr))
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", getPropertyType(propMap)))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
