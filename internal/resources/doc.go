// Package resources provides MCP resources describing the running assistant.
// Resources are read-only data sources that MCP clients can fetch:
//
//   - assistant://router/prompt: the routing prompt the model receives
//   - assistant://status: version, model, time zone, tools and model availability
package resources
