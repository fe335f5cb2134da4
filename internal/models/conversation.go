package models

import "time"

// AgentType tags which persona a conversation belongs to.
type AgentType string

const (
	AgentRecorder AgentType = "recorder"
	AgentAnalyzer AgentType = "analyzer"
	AgentSaver    AgentType = "saver"
	AgentPlanner  AgentType = "planner"
)

// AgentTypes lists the four personas in display order.
var AgentTypes = []AgentType{AgentRecorder, AgentAnalyzer, AgentSaver, AgentPlanner}

// Valid reports whether a is one of the four fixed personas.
func (a AgentType) Valid() bool {
	switch a {
	case AgentRecorder, AgentAnalyzer, AgentSaver, AgentPlanner:
		return true
	}
	return false
}

// TurnType distinguishes the two sides of a conversation.
type TurnType string

const (
	TurnUser      TurnType = "user"
	TurnAssistant TurnType = "assistant"
)

// Turn is one persisted message. The conversations table is an append-only
// log; a thread is superseded by minting a new conversation id, never edited.
type Turn struct {
	ID             int64
	UserID         int64
	AgentType      AgentType
	Type           TurnType
	Content        string
	Timestamp      time.Time
	ConversationID string
}

// ConversationInfo identifies one thread in a user's conversation picker.
type ConversationInfo struct {
	ID         string
	LastUpdate time.Time
}

// Label renders the picker entry the UI shows for this conversation.
func (c ConversationInfo) Label() string {
	return "对话 " + c.LastUpdate.Format("2006-01-02 15:04")
}
