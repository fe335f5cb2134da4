// Package agent implements the conversational layer: four fixed
// personas, each binding a system prompt and a tool manifest to the
// finance operations, and the Session type that carries conversation
// identity, replays history into prompts and splices tool results
// into replies.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elwin56/MengMengShangAn-program/internal/finance"
	"github.com/elwin56/MengMengShangAn-program/internal/llm"
	"github.com/elwin56/MengMengShangAn-program/internal/metrics"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments from the model.
type Handler func(ctx context.Context, args json.RawMessage) finance.Result

type toolEntry struct {
	tool    llm.Tool
	handler Handler
}

// Toolset is an instance-scoped tool registry. Each persona owns its
// own Toolset, so a model can only ever call the tools its persona
// declares. Registration happens once at construction; execution is
// read-only afterwards.
type Toolset struct {
	entries map[string]toolEntry
	order   []string
}

// NewToolset creates an empty Toolset.
func NewToolset() *Toolset {
	return &Toolset{entries: make(map[string]toolEntry)}
}

// Register adds a tool and its handler. Registering an empty or
// duplicate name is a programming error and panics.
func (ts *Toolset) Register(tool llm.Tool, handler Handler) {
	if tool.Name == "" {
		panic("agent: tool name must not be empty")
	}
	if _, exists := ts.entries[tool.Name]; exists {
		panic(fmt.Sprintf("agent: tool %q registered twice", tool.Name))
	}
	ts.entries[tool.Name] = toolEntry{tool: tool, handler: handler}
	ts.order = append(ts.order, tool.Name)
}

// Manifest returns the tool definitions in registration order.
func (ts *Toolset) Manifest() []llm.Tool {
	tools := make([]llm.Tool, 0, len(ts.order))
	for _, name := range ts.order {
		tools = append(tools, ts.entries[name].tool)
	}
	return tools
}

// Execute runs the named tool and returns its result envelope.
// Unknown tools and malformed argument payloads come back as error
// envelopes rather than Go errors: the outcome is spliced into the
// reply either way.
func (ts *Toolset) Execute(ctx context.Context, name, arguments string) finance.Result {
	entry, exists := ts.entries[name]
	if !exists {
		slog.Warn("unknown tool requested", "tool", name)
		metrics.ToolExecutions.WithLabelValues(name, "unknown").Inc()
		return finance.Error(fmt.Sprintf("未知工具: %s", name))
	}
	raw := json.RawMessage(arguments)
	if arguments == "" {
		raw = json.RawMessage("{}")
	}
	res := entry.handler(ctx, raw)
	metrics.ToolExecutions.WithLabelValues(name, string(res.Kind)).Inc()
	return res
}

// decodeArgs unmarshals tool call arguments into a typed struct,
// mapping decode failures to an error envelope.
func decodeArgs[T any](raw json.RawMessage, args *T) (finance.Result, bool) {
	if err := json.Unmarshal(raw, args); err != nil {
		return finance.Error(fmt.Sprintf("参数解析失败: %v", err)), false
	}
	return finance.Result{}, true
}
