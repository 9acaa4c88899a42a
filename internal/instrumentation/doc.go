// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the assistant.
//
// # Metrics
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of interactive authorizations by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Assistant Metrics:
//   - assistant_tool_invocations_total: Counter of tool invocations by tool name and status
//   - assistant_tool_duration_seconds: Histogram of tool execution durations
//   - assistant_route_decisions_total: Counter of routing decisions by outcome
//   - llm_requests_total / llm_request_duration_seconds: language model completions
//   - browser_agent_steps_total: Counter of browser agent actions
//
// Metrics are exported to the default Prometheus registry unless
// METRICS_EXPORTER selects otlp or stdout. They can be scraped when the
// metrics server is started with --metrics-addr.
//
// # Tracing
//
// Spans are created for routed requests (agent.route), tool invocations
// (tool.<name>), Google API calls (google.<service>.<operation>) and model
// completions (llm.generate). Browser agent steps are span events on the
// browser_use tool span. Every trace is sampled once an exporter is set.
//
// # Configuration
//
// Config is derived from the assistant configuration with NewConfig. The
// model name and Ollama URL become resource attributes (assistant.model,
// assistant.ollama_url). Exporters are selected with INSTRUMENTATION_ENABLED,
// METRICS_EXPORTER, TRACING_EXPORTER and OTEL_EXPORTER_OTLP_ENDPOINT, read by
// package config.
//
// The audit logger writes one line per tool call with the input length, never
// the input itself.
package instrumentation
