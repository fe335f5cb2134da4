package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
	"github.com/elwin56/MengMengShangAn-program/internal/storage"
)

// InsertTransaction persists a transaction and returns its row id.
func (s *SQLiteStore) InsertTransaction(ctx context.Context, tx *models.Transaction) (int64, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, amount, category, transaction_date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Amount, tx.Category, tx.Date, tx.Description, formatTime(tx.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read transaction id: %w", err)
	}
	tx.ID = id
	return id, nil
}

// ListTransactions returns a user's transactions matching the filter,
// newest transaction date first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID int64, f storage.TransactionFilter) ([]models.Transaction, error) {
	query := "SELECT id, user_id, amount, category, transaction_date, description, created_at FROM transactions WHERE user_id = ?"
	args := []any{userID}

	if f.StartDate != "" {
		query += " AND transaction_date >= ?"
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += " AND transaction_date <= ?"
		args = append(args, f.EndDate)
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	query += " ORDER BY transaction_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var (
			tx          models.Transaction
			description *string
			createdAt   string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Category, &tx.Date, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if description != nil {
			tx.Description = *description
		}
		tx.CreatedAt = parseTime(createdAt)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}
