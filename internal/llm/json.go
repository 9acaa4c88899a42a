package llm

import "strings"

// ExtractJSON returns the substring from the first '{' through the last '}'
// of text. Models often wrap the object in prose or code fences; everything
// outside the outermost braces is dropped. It reports false when text holds
// no such span.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}
