// Package common provides the types and helpers shared by all tool packages:
// the Tool and Handler types the router dispatches to, and the
// instrumentation wrapper that adds tracing, metrics and audit logging to a
// handler.
package common
