// Package server holds the assistant's optional network faces.
//
// MetricsServer exposes the Prometheus registry filled by the
// instrumentation provider on /metrics, next to a /healthz check. It runs
// on its own goroutine beside the chat loop when --metrics-addr is set.
//
// NewMCPServer publishes the tool registry over the Model Context Protocol,
// so other agents can call the same tools the router dispatches to. Each
// tool takes one string argument, "input". The extra assistant_ask tool
// runs a full routed turn. ServeStdio serves it on stdin and stdout.
package server
