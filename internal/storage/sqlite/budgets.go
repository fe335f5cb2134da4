package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
	"github.com/elwin56/MengMengShangAn-program/internal/storage"
)

// UpsertBudget inserts a budget or replaces the amount and period type of an
// existing one for the same (user, category, period_start, period_end). The
// original created_at is preserved on replacement.
func (s *SQLiteStore) UpsertBudget(ctx context.Context, b *models.Budget) error {
	now := formatTime(time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category, amount, period_type, period_start, period_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, category, period_start, period_end) DO UPDATE SET
			amount = excluded.amount,
			period_type = excluded.period_type,
			updated_at = excluded.updated_at`,
		b.UserID, b.Category, b.Amount, b.PeriodType, b.PeriodStart, b.PeriodEnd, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	return nil
}

// ActiveBudget returns the budget of the given period type whose period
// contains date, or storage.ErrNotFound.
func (s *SQLiteStore) ActiveBudget(ctx context.Context, userID int64, category string, pt models.PeriodType, date string) (*models.Budget, error) {
	b := &models.Budget{}
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category, amount, period_type, period_start, period_end, created_at, updated_at
		FROM budgets
		WHERE user_id = ? AND category = ? AND period_type = ?
		AND period_start <= ? AND period_end >= ?`,
		userID, category, pt, date, date,
	).Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.PeriodType, &b.PeriodStart, &b.PeriodEnd, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

// ActiveBudgets returns all budgets of the given period type whose periods
// contain date.
func (s *SQLiteStore) ActiveBudgets(ctx context.Context, userID int64, pt models.PeriodType, date string) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category, amount, period_type, period_start, period_end, created_at, updated_at
		FROM budgets
		WHERE user_id = ? AND period_type = ?
		AND period_start <= ? AND period_end >= ?
		ORDER BY category`,
		userID, pt, date, date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var (
			b                    models.Budget
			createdAt, updatedAt string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.PeriodType, &b.PeriodStart, &b.PeriodEnd, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.CreatedAt = parseTime(createdAt)
		b.UpdatedAt = parseTime(updatedAt)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return budgets, nil
}
