package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elwin56/MengMengShangAn-program/internal/llm"
	"github.com/elwin56/MengMengShangAn-program/internal/models"
	"github.com/elwin56/MengMengShangAn-program/internal/storage"
)

// historyWindow bounds how many recent turns are replayed into the
// prompt of the next generation.
const historyWindow = 20

// fallbackReply is returned when generation fails. Turn submission
// never surfaces errors to the chat UI.
const fallbackReply = "处理请求时出错，请尝试重新表述您的问题。"

// Session binds one persona to one user and tracks which conversation
// is active. All persisted state lives in the store; the session itself
// only carries the current conversation id, so a restart resumes
// cleanly from the database.
type Session struct {
	store   storage.Store
	gen     llm.Generator
	persona Persona
	tools   *Toolset
	userID  int64
	logger  *slog.Logger

	now func() time.Time

	mu     sync.Mutex
	convID string
}

// NewSession creates a session for a persona with a freshly minted
// conversation id. The toolset is bound once here; every turn uses the
// same manifest.
func NewSession(store storage.Store, gen llm.Generator, persona Persona, toolbox *Toolset, userID int64) *Session {
	s := &Session{
		store:   store,
		gen:     gen,
		persona: persona,
		tools:   toolbox,
		userID:  userID,
		logger:  slog.Default().With("agent", string(persona.Type)),
		now:     time.Now,
	}
	s.convID = s.mintConversationID()
	return s
}

// WithClock overrides the session clock, for tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

func (s *Session) mintConversationID() string {
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s_%s",
		s.userID, s.persona.Type, s.now().Format("20060102150405"), entropy)
}

// ConversationID returns the active conversation id.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convID
}

// NewConversation abandons the current thread and mints a fresh
// conversation id. The old thread stays in the store untouched.
func (s *Session) NewConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convID = s.mintConversationID()
	s.logger.Info("started new conversation", "conversation_id", s.convID)
	return s.convID
}

// LoadConversation switches to an existing thread after verifying it
// belongs to this user and persona. On any failure the active
// conversation is left unchanged.
func (s *Session) LoadConversation(ctx context.Context, conversationID string) error {
	exists, err := s.store.ConversationExists(ctx, s.userID, s.persona.Type, conversationID)
	if err != nil {
		return fmt.Errorf("failed to verify conversation: %w", err)
	}
	if !exists {
		return fmt.Errorf("conversation %s not found for agent %s", conversationID, s.persona.Type)
	}

	s.mu.Lock()
	s.convID = conversationID
	s.mu.Unlock()
	s.logger.Info("loaded conversation", "conversation_id", conversationID)
	return nil
}

// Conversations lists this persona's threads, most recent first.
func (s *Session) Conversations(ctx context.Context) ([]models.ConversationInfo, error) {
	return s.store.ConversationList(ctx, s.userID, s.persona.Type)
}

// History returns the replay window of the active conversation in
// chronological order.
func (s *Session) History(ctx context.Context) ([]models.Turn, error) {
	return s.store.ConversationHistory(ctx, s.userID, s.persona.Type, s.ConversationID(), historyWindow)
}

// SaveTurn appends one message to the active conversation.
func (s *Session) SaveTurn(ctx context.Context, turnType models.TurnType, content string) error {
	return s.store.AppendTurn(ctx, &models.Turn{
		UserID:         s.userID,
		AgentType:      s.persona.Type,
		Type:           turnType,
		Content:        content,
		Timestamp:      s.now().UTC(),
		ConversationID: s.ConversationID(),
	})
}

// SubmitTurn produces the assistant's reply to one user message. The
// recent history is replayed as a text preamble, the persona's tools
// are offered to the model, and any tool calls are executed with their
// result envelopes spliced after the narrative. Failures degrade to the
// fixed fallback reply instead of an error: the chat must always answer.
// Persistence is the caller's job via SaveTurn.
func (s *Session) SubmitTurn(ctx context.Context, userMsg string) string {
	prompt := userMsg
	history, err := s.History(ctx)
	if err != nil {
		s.logger.Warn("failed to load history", "error", err)
	} else if len(history) > 0 {
		var b strings.Builder
		b.WriteString("历史对话：\n")
		for _, turn := range history {
			b.WriteString(string(turn.Type))
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
		b.WriteString("用户现在说：")
		b.WriteString(userMsg)
		prompt = b.String()
	}

	reply, err := s.gen.Generate(ctx, llm.Request{
		System: s.persona.SystemPrompt,
		Prompt: prompt,
		Tools:  s.tools.Manifest(),
	})
	if err != nil {
		s.logger.Error("generation failed", "error", err)
		return fallbackReply
	}

	if len(reply.ToolCalls) == 0 {
		return reply.Content
	}

	results := make([]string, 0, len(reply.ToolCalls))
	for _, call := range reply.ToolCalls {
		res := s.tools.Execute(ctx, call.Name, call.Arguments)
		s.logger.Info("executed tool", "tool", call.Name, "status", string(res.Kind))
		results = append(results, res.JSON())
	}

	spliced := spliceToolResults(results)
	if reply.Content == "" {
		return strings.TrimRight(spliced, "\n")
	}
	return reply.Content + "\n\n" + strings.TrimRight(spliced, "\n")
}

// spliceToolResults renders tool result envelopes as reply lines. A
// success envelope contributes an 操作成功 line plus an optional 提醒
// line when it carries a warning; failures become 操作失败 lines.
// Output that is not an envelope is passed through raw.
func spliceToolResults(results []string) string {
	var b strings.Builder
	for _, result := range results {
		var data map[string]any
		if err := json.Unmarshal([]byte(result), &data); err != nil {
			fmt.Fprintf(&b, "工具返回: %s\n", result)
			continue
		}

		status, _ := data["status"].(string)
		message, _ := data["message"].(string)
		warning, _ := data["warning"].(string)

		switch status {
		case "success":
			if message != "" {
				fmt.Fprintf(&b, "操作成功: %s\n", message)
			}
			if warning != "" {
				fmt.Fprintf(&b, "提醒: %s\n", warning)
			}
		case "warning":
			if message == "" {
				message = "未知提醒"
			}
			fmt.Fprintf(&b, "提醒: %s\n", message)
		default:
			if message == "" {
				message = "未知错误"
			}
			fmt.Fprintf(&b, "操作失败: %s\n", message)
		}
	}
	return b.String()
}
