package models

import "github.com/shopspring/decimal"

// SavingTip is static reference data seeded at startup and read-only after.
type SavingTip struct {
	ID       int64
	Category string
	Tip      string

	// Difficulty is one of 简单/中等/困难.
	Difficulty string

	// EstimatedSaving is the rough monthly amount the tip can save.
	EstimatedSaving decimal.Decimal
}
