package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
)

// SavingTips returns up to limit random tips, optionally filtered by category
// and difficulty.
func (s *SQLiteStore) SavingTips(ctx context.Context, category, difficulty string, limit int) ([]models.SavingTip, error) {
	query := "SELECT id, category, tip, difficulty, estimated_saving FROM saving_tips WHERE 1=1"
	var args []any

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, difficulty)
	}
	query += " ORDER BY RANDOM() LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get saving tips: %w", err)
	}
	defer rows.Close()

	var tips []models.SavingTip
	for rows.Next() {
		var (
			tip    models.SavingTip
			saving sql.NullString
		)
		if err := rows.Scan(&tip.ID, &tip.Category, &tip.Tip, &tip.Difficulty, &saving); err != nil {
			return nil, fmt.Errorf("failed to scan saving tip: %w", err)
		}
		if saving.Valid {
			if d, err := decimal.NewFromString(saving.String); err == nil {
				tip.EstimatedSaving = d
			}
		}
		tips = append(tips, tip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saving tips: %w", err)
	}

	return tips, nil
}
