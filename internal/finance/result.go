// Package finance implements the deterministic operations the agents expose
// as callable tools: recording transactions, budgets, spending reports,
// saving tips, and goal planning.
package finance

import "encoding/json"

// Kind tags a Result as success, warning, or error.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Result is the uniform envelope every finance operation returns. Message is
// human-readable; Payload carries machine fields (counts, sums, ids) for the
// model to narrate from.
type Result struct {
	Kind    Kind
	Message string
	Payload map[string]any
}

// Success builds a success Result.
func Success(message string) Result {
	return Result{Kind: KindSuccess, Message: message}
}

// Warning builds a warning Result.
func Warning(message string) Result {
	return Result{Kind: KindWarning, Message: message}
}

// Error builds an error Result.
func Error(message string) Result {
	return Result{Kind: KindError, Message: message}
}

// With attaches a payload field and returns the Result for chaining.
func (r Result) With(key string, value any) Result {
	if r.Payload == nil {
		r.Payload = map[string]any{}
	}
	r.Payload[key] = value
	return r
}

// JSON renders the envelope as the flat object fed back to the model:
// {"status": ..., "message": ..., <payload fields>}.
func (r Result) JSON() string {
	obj := make(map[string]any, len(r.Payload)+2)
	for k, v := range r.Payload {
		obj[k] = v
	}
	obj["status"] = string(r.Kind)
	if r.Message != "" {
		obj["message"] = r.Message
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return `{"status":"error","message":"结果序列化失败"}`
	}
	return string(data)
}
