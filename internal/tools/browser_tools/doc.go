// Package browser_tools provides the browser_use tool, which hands a web task
// to the browser agent under a strict instruction template that keeps the
// agent on the requested task.
package browser_tools
