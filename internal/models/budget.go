package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType is the length class of a budget period.
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
)

// Valid reports whether p is one of the three known period types.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// Budget is a spending ceiling for one category over one period. At most one
// row exists per (user, category, period_start, period_end); setting the same
// period again replaces the amount and period type but keeps CreatedAt.
type Budget struct {
	ID         int64
	UserID     int64
	Category   string
	Amount     decimal.Decimal
	PeriodType PeriodType

	// PeriodStart and PeriodEnd are inclusive YYYY-MM-DD bounds.
	PeriodStart string
	PeriodEnd   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
