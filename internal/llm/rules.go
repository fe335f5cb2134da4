package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var amountPattern = regexp.MustCompile(`(\d+)元`)

// RuleGenerator is a keyword-matching stand-in used when no model API
// key is configured. It keeps the assistant usable offline: replies are
// canned, but the chat flow, history and persistence all behave as with
// a real model.
type RuleGenerator struct{}

// NewRuleGenerator creates a RuleGenerator.
func NewRuleGenerator() *RuleGenerator {
	return &RuleGenerator{}
}

// Generate matches keywords in the prompt and returns a canned reply.
// It never fails and never requests tool calls.
func (g *RuleGenerator) Generate(_ context.Context, req Request) (*Reply, error) {
	prompt := req.Prompt

	switch {
	case strings.Contains(prompt, "记录") || strings.Contains(prompt, "花了") || strings.Contains(prompt, "收入"):
		amount := "X"
		if m := amountPattern.FindStringSubmatch(prompt); m != nil {
			amount = m[1]
		}
		return &Reply{Content: fmt.Sprintf("已确认记录📝：%s元。【必要】🏠。记录已保存。", amount)}, nil
	case strings.Contains(prompt, "花了多少") || strings.Contains(prompt, "支出") || strings.Contains(prompt, "预算"):
		return &Reply{Content: "本月总支出约5000元，餐饮占比30%，交通占比20%📊。"}, nil
	case strings.Contains(prompt, "省钱") || strings.Contains(prompt, "买"):
		return &Reply{Content: "哇哦🤩，可以考虑看看二手平台哦，通常能省30%左右呢！💸"}, nil
	default:
		return &Reply{Content: "我已收到您的消息，这是一条模拟回复。在实际使用时，这里会显示AI的真实回复。"}, nil
	}
}
