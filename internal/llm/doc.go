// Package llm talks to the local language model.
//
// Model is the single capability the rest of the assistant needs: turn a
// prompt into text. Ollama implements it against the Ollama HTTP API using
// non-streaming /api/generate calls at temperature 0, so identical prompts
// route identically.
package llm
