// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// TransactionFilter narrows a transaction listing. Zero values mean
// "no constraint". Dates are inclusive YYYY-MM-DD bounds.
type TransactionFilter struct {
	StartDate string
	EndDate   string
	Category  string
}

// Store defines the interface for finance-assistant storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the agent or server layers.
type Store interface {
	// EnsureUser creates the user row if it does not exist yet.
	EnsureUser(ctx context.Context, id int64, name string) error

	// InsertTransaction persists a transaction and returns its row id.
	InsertTransaction(ctx context.Context, tx *models.Transaction) (int64, error)

	// ListTransactions returns a user's transactions matching the filter,
	// newest transaction date first.
	ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]models.Transaction, error)

	// UpsertBudget inserts a budget or, when one exists for the same
	// (user, category, period_start, period_end), replaces its amount and
	// period type while preserving the original CreatedAt.
	UpsertBudget(ctx context.Context, b *models.Budget) error

	// ActiveBudget returns the budget of the given period type whose period
	// contains date, or ErrNotFound.
	ActiveBudget(ctx context.Context, userID int64, category string, pt models.PeriodType, date string) (*models.Budget, error)

	// ActiveBudgets returns all budgets of the given period type whose
	// periods contain date.
	ActiveBudgets(ctx context.Context, userID int64, pt models.PeriodType, date string) ([]models.Budget, error)

	// AppendTurn appends one message to the conversation log.
	AppendTurn(ctx context.Context, turn *models.Turn) error

	// ConversationList returns the distinct conversation ids for a
	// (user, agent) pair ordered by most recent activity descending.
	ConversationList(ctx context.Context, userID int64, agent models.AgentType) ([]models.ConversationInfo, error)

	// ConversationHistory returns up to limit of the most recent turns of a
	// conversation in chronological (oldest-first) order.
	ConversationHistory(ctx context.Context, userID int64, agent models.AgentType, conversationID string, limit int) ([]models.Turn, error)

	// ConversationExists reports whether a conversation id belongs to the
	// given (user, agent) pair.
	ConversationExists(ctx context.Context, userID int64, agent models.AgentType, conversationID string) (bool, error)

	// SavingTips returns up to limit random tips, optionally filtered by
	// category and difficulty.
	SavingTips(ctx context.Context, category, difficulty string, limit int) ([]models.SavingTip, error)

	// Close releases any resources held by the store.
	Close() error
}
