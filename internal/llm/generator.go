// Package llm defines the model boundary for the assistant. A Generator
// turns a prompt plus a tool manifest into a reply that either answers
// directly or requests tool calls. Implementations cover a remote
// OpenAI-compatible endpoint and a local rule engine used when no API
// key is configured.
package llm

import "context"

// Tool describes a callable function exposed to the model.
// Parameters uses JSON Schema format to describe the function's input.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall is a function invocation requested by the model.
// Arguments is the raw JSON object the model produced.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Request carries everything a single generation needs: the persona's
// system prompt, the composed user prompt (history preamble plus the
// current message), and the persona's tool manifest.
type Request struct {
	System string
	Prompt string
	Tools  []Tool
}

// Reply is the model's answer. ToolCalls is non-empty when the model
// asked for function execution instead of, or in addition to, text.
type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

// Generator produces a reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Reply, error)
}
