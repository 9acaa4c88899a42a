// Package cmd implements the command-line interface for assistant.
//
// This package provides the following commands:
//   - chat: Interactive loop routing each line to a tool (default)
//   - ask: Route a single request and print the reply
//   - auth: Obtain or refresh the cached Google token
//   - serve: Expose the tools as an MCP server over stdio
//   - generate-docs: Generate markdown documentation for all tools
//   - version: Display version information
//
// Configuration is read from an optional dotenv file, then the environment,
// then the persistent flags.
package cmd
