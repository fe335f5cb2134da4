package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one money movement. Rows are immutable once written: there is
// no update or delete path anywhere in the system.
type Transaction struct {
	ID     int64
	UserID int64

	// Amount is signed: positive for income, negative for expense.
	Amount decimal.Decimal

	// Category is a free-form label such as 餐饮 or 交通.
	Category string

	// Date is the transaction date in YYYY-MM-DD form.
	Date string

	Description string
	CreatedAt   time.Time
}

// IsExpense reports whether the transaction spends money.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}
