package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
	"github.com/elwin56/MengMengShangAn-program/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// Tools bundles the finance operations for one user over one store. All
// operations absorb storage and input failures into error Results; they never
// return a Go error to the caller.
type Tools struct {
	store  storage.Store
	userID int64
	now    func() time.Time
}

// New creates the finance toolset for a user.
func New(store storage.Store, userID int64) *Tools {
	return &Tools{store: store, userID: userID, now: time.Now}
}

// WithClock overrides the clock. Used by tests to pin period math.
func (t *Tools) WithClock(now func() time.Time) *Tools {
	t.now = now
	return t
}

func (t *Tools) today() string {
	return t.now().Format(dateLayout)
}

// RecordTransactionArgs are the arguments of the add_transaction tool.
type RecordTransactionArgs struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"transaction_date,omitempty"`
	Description string          `json:"description,omitempty"`
}

// RecordTransaction inserts one signed transaction. Expenses additionally run
// the monthly budget check; any resulting warning rides in the payload.
func (t *Tools) RecordTransaction(ctx context.Context, args RecordTransactionArgs) Result {
	if args.Category == "" {
		return Error("请提供交易类别")
	}
	if args.Amount.IsZero() {
		return Error("金额不能为0")
	}
	date := args.Date
	if date == "" {
		date = t.today()
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return Error("日期格式错误，应为YYYY-MM-DD")
	}

	tx := &models.Transaction{
		UserID:      t.userID,
		Amount:      args.Amount,
		Category:    args.Category,
		Date:        date,
		Description: args.Description,
	}
	id, err := t.store.InsertTransaction(ctx, tx)
	if err != nil {
		return Error(fmt.Sprintf("记录失败: %v", err))
	}

	direction := "支出"
	if args.Amount.IsPositive() {
		direction = "收入"
	}
	res := Success(fmt.Sprintf("已记录%s: %s元", direction, args.Amount.Abs())).
		With("record_id", id)

	if tx.IsExpense() {
		if warning := t.budgetWarning(ctx, args.Category, date); warning != "" {
			res = res.With("warning", warning)
		}
	}
	return res
}

// budgetWarning checks the transaction's category against the active monthly
// budget. Returns "" when no budget applies or spending is comfortable.
func (t *Tools) budgetWarning(ctx context.Context, category, date string) string {
	budget, err := t.store.ActiveBudget(ctx, t.userID, category, models.PeriodMonth, date)
	if err == storage.ErrNotFound {
		return ""
	}
	if err != nil {
		slog.Warn("budget check failed", "category", category, "error", err)
		return ""
	}
	if !budget.Amount.IsPositive() {
		return ""
	}

	day, _ := time.Parse(dateLayout, date)
	start, end := monthBounds(day)
	spent, err := t.spentBetween(ctx, category, start, end)
	if err != nil {
		slog.Warn("budget check failed", "category", category, "error", err)
		return ""
	}

	percentage := spent.Div(budget.Amount).Mul(hundred)
	switch {
	case percentage.GreaterThan(hundred):
		overage := spent.Sub(budget.Amount)
		return fmt.Sprintf("警告：%s已超支！本月预算%s元，已花费%s元，超支%s元",
			category, budget.Amount, spent, overage)
	case percentage.GreaterThan(decimal.NewFromInt(80)):
		remaining := budget.Amount.Sub(spent)
		return fmt.Sprintf("提醒：%s已使用预算的%s%%，剩余%s元",
			category, percentage.Round(0), remaining)
	}
	return ""
}

// spentBetween sums the absolute expense amounts for a category (all
// categories when empty) over an inclusive date range.
func (t *Tools) spentBetween(ctx context.Context, category, start, end string) (decimal.Decimal, error) {
	txs, err := t.store.ListTransactions(ctx, t.userID, storage.TransactionFilter{
		StartDate: start,
		EndDate:   end,
		Category:  category,
	})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, tx := range txs {
		if tx.IsExpense() {
			total = total.Add(tx.Amount.Abs())
		}
	}
	return total, nil
}

// SetBudgetArgs are the arguments of the set_budget tool.
type SetBudgetArgs struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	PeriodType  string          `json:"period_type,omitempty"`
	PeriodStart string          `json:"period_start,omitempty"`
	PeriodEnd   string          `json:"period_end,omitempty"`
}

// SetBudget upserts a budget. Missing period bounds default to the period
// containing today.
func (t *Tools) SetBudget(ctx context.Context, args SetBudgetArgs) Result {
	if args.Category == "" {
		return Error("请提供预算类别")
	}
	if !args.Amount.IsPositive() {
		return Error("预算金额必须大于0")
	}
	pt, ok := normalizePeriodType(args.PeriodType)
	if !ok {
		return Error("周期类型只支持月、季、年")
	}

	start, end := args.PeriodStart, args.PeriodEnd
	if start == "" || end == "" {
		start, end = periodBounds(pt, t.now())
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return Error("日期格式错误，应为YYYY-MM-DD")
		}
	}

	err := t.store.UpsertBudget(ctx, &models.Budget{
		UserID:      t.userID,
		Category:    args.Category,
		Amount:      args.Amount,
		PeriodType:  pt,
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		return Error(fmt.Sprintf("设置预算失败: %v", err))
	}

	return Success(fmt.Sprintf("已设置%s度预算: %s %s元", periodLabel(pt), args.Category, args.Amount)).
		With("period_start", start).
		With("period_end", end)
}

// ListTransactionsArgs are the arguments of the get_transactions tool.
type ListTransactionsArgs struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Category  string `json:"category,omitempty"`
}

// ListTransactions returns the matching transactions, newest first.
func (t *Tools) ListTransactions(ctx context.Context, args ListTransactionsArgs) Result {
	txs, err := t.store.ListTransactions(ctx, t.userID, storage.TransactionFilter{
		StartDate: args.StartDate,
		EndDate:   args.EndDate,
		Category:  args.Category,
	})
	if err != nil {
		return Error(fmt.Sprintf("查询失败: %v", err))
	}

	records := make([]map[string]any, 0, len(txs))
	for _, tx := range txs {
		records = append(records, map[string]any{
			"id":          tx.ID,
			"amount":      tx.Amount.String(),
			"category":    tx.Category,
			"date":        tx.Date,
			"description": tx.Description,
		})
	}

	return Success(fmt.Sprintf("共找到%d条记录", len(records))).
		With("count", len(records)).
		With("transactions", records)
}

// SpendingSummaryArgs are the arguments of the get_spending_summary tool.
type SpendingSummaryArgs struct {
	Period string `json:"period,omitempty"` // month/week/year
}

// SpendingSummary aggregates income, expense, and per-category expense for
// the period-to-date.
func (t *Tools) SpendingSummary(ctx context.Context, args SpendingSummaryArgs) Result {
	now := t.now()
	end := now.Format(dateLayout)

	var start string
	period := args.Period
	switch period {
	case "", "month":
		period = "month"
		start = firstOfMonth(now).Format(dateLayout)
	case "week":
		start = weekStart(now)
	case "year":
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Format(dateLayout)
	default:
		return Error("时间周期只支持month、week、year")
	}

	txs, err := t.store.ListTransactions(ctx, t.userID, storage.TransactionFilter{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return Error(fmt.Sprintf("获取支出汇总失败: %v", err))
	}

	income, expense := decimal.Zero, decimal.Zero
	byCategory := map[string]string{}
	totals := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.IsExpense() {
			expense = expense.Add(tx.Amount.Abs())
			totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Abs())
		} else {
			income = income.Add(tx.Amount)
		}
	}
	for category, total := range totals {
		byCategory[category] = total.String()
	}
	balance := income.Sub(expense)

	return Success(fmt.Sprintf("本期收入%s元，支出%s元，结余%s元", income, expense, balance)).
		With("period", period).
		With("start_date", start).
		With("end_date", end).
		With("total_income", income.String()).
		With("total_expense", expense.String()).
		With("balance", balance.String()).
		With("by_category", byCategory)
}

// BudgetStatus reports budget/spent/remaining/percentage for every category
// with an active monthly budget.
func (t *Tools) BudgetStatus(ctx context.Context) Result {
	now := t.now()
	today := now.Format(dateLayout)
	start, end := monthBounds(now)

	budgets, err := t.store.ActiveBudgets(ctx, t.userID, models.PeriodMonth, today)
	if err != nil {
		return Error(fmt.Sprintf("获取预算状态失败: %v", err))
	}

	status := map[string]any{}
	for _, b := range budgets {
		spent, err := t.spentBetween(ctx, b.Category, start, end)
		if err != nil {
			return Error(fmt.Sprintf("获取预算状态失败: %v", err))
		}
		percentage := decimal.Zero
		if b.Amount.IsPositive() {
			percentage = spent.Div(b.Amount).Mul(hundred).Round(1)
		}
		status[b.Category] = map[string]any{
			"budget":     b.Amount.String(),
			"spent":      spent.String(),
			"remaining":  b.Amount.Sub(spent).String(),
			"percentage": percentage.String(),
		}
	}

	return Success(fmt.Sprintf("本月共有%d项预算", len(budgets))).
		With("month", now.Format("2006-01")).
		With("budget_status", status)
}

// SavingTipsArgs are the arguments of the get_saving_tips tool.
type SavingTipsArgs struct {
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// SavingTips returns up to three random tips from the seeded reference data.
func (t *Tools) SavingTips(ctx context.Context, args SavingTipsArgs) Result {
	tips, err := t.store.SavingTips(ctx, args.Category, args.Difficulty, 3)
	if err != nil {
		return Error(fmt.Sprintf("获取省钱建议失败: %v", err))
	}

	items := make([]map[string]any, 0, len(tips))
	for _, tip := range tips {
		items = append(items, map[string]any{
			"category":         tip.Category,
			"tip":              tip.Tip,
			"difficulty":       tip.Difficulty,
			"estimated_saving": tip.EstimatedSaving.String(),
		})
	}

	return Success(fmt.Sprintf("为你找到%d条省钱建议", len(items))).
		With("tips", items)
}

// categoryKeywords maps purchase keywords onto tip categories for
// AlternativeSuggestion.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"衣服", "购物"},
	{"鞋子", "购物"},
	{"手机", "购物"},
	{"电脑", "购物"},
	{"外卖", "餐饮"},
	{"餐厅", "餐饮"},
	{"电影", "娱乐"},
	{"打车", "交通"},
}

// AlternativeSuggestionArgs are the arguments of the
// get_alternative_suggestion tool.
type AlternativeSuggestionArgs struct {
	Item           string          `json:"item"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

// AlternativeSuggestion proposes up to three cheaper alternatives for a
// planned purchase.
func (t *Tools) AlternativeSuggestion(ctx context.Context, args AlternativeSuggestionArgs) Result {
	if args.Item == "" {
		return Error("请提供物品名称")
	}

	category := "其他"
	for _, kw := range categoryKeywords {
		if strings.Contains(args.Item, kw.keyword) {
			category = kw.category
			break
		}
	}

	var suggestions []string
	if tips, err := t.store.SavingTips(ctx, category, "", 3); err == nil {
		for _, tip := range tips {
			suggestions = append(suggestions, tip.Tip)
		}
	}

	if args.EstimatedPrice.GreaterThan(hundred) {
		suggestions = append(suggestions,
			fmt.Sprintf("考虑购买二手或翻新的%s，通常可节省30%%-50%%", args.Item))
	}
	alertPrice := args.EstimatedPrice.Mul(decimal.NewFromFloat(0.8))
	suggestions = append(suggestions,
		fmt.Sprintf("设置%s元的价格提醒，等待促销活动", alertPrice))

	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}

	return Success(fmt.Sprintf("关于%s的替代方案", args.Item)).
		With("item", args.Item).
		With("estimated_price", args.EstimatedPrice.String()).
		With("suggestions", suggestions)
}
