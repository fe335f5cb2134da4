package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
)

// AppendTurn appends one message to the conversation log.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn *models.Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (user_id, agent_type, message_type, content, timestamp, conversation_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		turn.UserID, turn.AgentType, turn.Type, turn.Content, formatTime(turn.Timestamp), turn.ConversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read turn id: %w", err)
	}
	turn.ID = id
	return nil
}

// ConversationList returns the distinct conversation ids for a (user, agent)
// pair ordered by most recent activity descending.
func (s *SQLiteStore) ConversationList(ctx context.Context, userID int64, agent models.AgentType) ([]models.ConversationInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, MAX(timestamp) AS last_update
		FROM conversations
		WHERE user_id = ? AND agent_type = ?
		GROUP BY conversation_id
		ORDER BY last_update DESC`,
		userID, agent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var infos []models.ConversationInfo
	for rows.Next() {
		var (
			info       models.ConversationInfo
			lastUpdate string
		)
		if err := rows.Scan(&info.ID, &lastUpdate); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		info.LastUpdate = parseTime(lastUpdate)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return infos, nil
}

// ConversationHistory returns up to limit of the most recent turns of a
// conversation in chronological (oldest-first) order.
func (s *SQLiteStore) ConversationHistory(ctx context.Context, userID int64, agent models.AgentType, conversationID string, limit int) ([]models.Turn, error) {
	// Select the newest turns, then flip into chronological order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, agent_type, message_type, content, timestamp, conversation_id
		FROM conversations
		WHERE user_id = ? AND agent_type = ? AND conversation_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		userID, agent, conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var (
			turn models.Turn
			ts   string
		)
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.AgentType, &turn.Type, &turn.Content, &ts, &turn.ConversationID); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.Timestamp = parseTime(ts)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}

	// Reverse: query returned newest first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// ConversationExists reports whether a conversation id belongs to the given
// (user, agent) pair.
func (s *SQLiteStore) ConversationExists(ctx context.Context, userID int64, agent models.AgentType, conversationID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM conversations
		WHERE user_id = ? AND agent_type = ? AND conversation_id = ?`,
		userID, agent, conversationID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check conversation: %w", err)
	}
	return count > 0, nil
}
