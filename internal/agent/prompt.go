package agent

import "strings"

// SystemPrompt is the router instruction for the tools in r.
func SystemPrompt(r *Registry) string {
	var b strings.Builder
	b.WriteString("\nYou are a strict AI tool router.\n\n")
	b.WriteString("Available tools:\n")
	for _, t := range r.tools {
		b.WriteString("- ")
		b.WriteString(t.Name)
		if t.Description != "" {
			b.WriteString(": ")
			b.WriteString(t.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nIf a tool is required, respond ONLY in valid JSON:\n\n")
	b.WriteString("{\n  \"tool\": \"tool_name\",\n  \"input\": \"tool_input\"\n}\n\n")
	b.WriteString("No explanations.\nNo markdown.\n")
	return b.String()
}

// RoutePrompt is the full prompt for one user utterance.
func RoutePrompt(r *Registry, utterance string) string {
	return SystemPrompt(r) + "\nUser: " + utterance
}
