// Package agent routes free text to tools.
//
// A Router sends the user's utterance to the language model together with an
// instruction listing the registered tools and demanding a JSON answer of the
// form {"tool": "<name>", "input": "<string>"}. The first brace-delimited
// span of the reply is parsed and the named tool runs with the input. When no
// usable tool call comes back, or the tool fails, the model's own text is the
// answer.
package agent
