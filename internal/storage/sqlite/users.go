package sqlite

import (
	"context"
	"fmt"
	"time"
)

// timeLayout is a fixed-width UTC timestamp format. Unlike RFC3339Nano it
// never trims trailing zeros, so lexical order equals chronological order and
// MAX(timestamp) in SQL stays correct.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Tolerate hand-written or legacy rows.
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

// EnsureUser creates the user row if it does not exist yet.
func (s *SQLiteStore) EnsureUser(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (id, username, created_at) VALUES (?, ?, ?)",
		id, name, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}
