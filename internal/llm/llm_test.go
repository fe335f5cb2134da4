package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRuleGenerator(t *testing.T) {
	gen := NewRuleGenerator()

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"record with amount", "今天买菜花了35元", "已确认记录📝：35元。【必要】🏠。记录已保存。"},
		{"record without amount", "帮我记录一笔外卖", "已确认记录📝：X元。【必要】🏠。记录已保存。"},
		{"spending query", "这个月支出情况怎么样", "本月总支出约5000元，餐饮占比30%，交通占比20%📊。"},
		{"saving query", "有什么省钱建议吗", "哇哦🤩，可以考虑看看二手平台哦，通常能省30%左右呢！💸"},
		{"fallback", "你好呀", "我已收到您的消息，这是一条模拟回复。在实际使用时，这里会显示AI的真实回复。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := gen.Generate(context.Background(), Request{Prompt: tt.prompt})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if reply.Content != tt.want {
				t.Errorf("got %q, want %q", reply.Content, tt.want)
			}
			if len(reply.ToolCalls) != 0 {
				t.Errorf("expected no tool calls, got %d", len(reply.ToolCalls))
			}
		})
	}
}

func TestClientGenerate(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"choices": [{
				"message": {
					"content": "",
					"tool_calls": [{
						"function": {"name": "add_transaction", "arguments": "{\"amount\": -35, \"category\": \"餐饮\"}"}
					}]
				}
			}]
		}`)
	}))
	defer srv.Close()

	client := NewClient("Qwen/Qwen2.5-72B-Instruct", srv.URL, "test-key")
	reply, err := client.Generate(context.Background(), Request{
		System: "你是记账助手",
		Prompt: "今天外卖花了35元",
		Tools: []Tool{{
			Name:        "add_transaction",
			Description: "记录一笔收支",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(reply.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(reply.ToolCalls))
	}
	if reply.ToolCalls[0].Name != "add_transaction" {
		t.Errorf("unexpected tool name %q", reply.ToolCalls[0].Name)
	}
	if !strings.Contains(reply.ToolCalls[0].Arguments, `"category": "餐饮"`) {
		t.Errorf("unexpected arguments %q", reply.ToolCalls[0].Arguments)
	}

	if captured.Model != "Qwen/Qwen2.5-72B-Instruct" {
		t.Errorf("unexpected model %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("unexpected messages %+v", captured.Messages)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].Type != "function" || captured.Tools[0].Function.Name != "add_transaction" {
		t.Errorf("unexpected tools %+v", captured.Tools)
	}
}

func TestClientGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-model", srv.URL, "test-key")
	if _, err := client.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
