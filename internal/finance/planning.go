package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elwin56/MengMengShangAn-program/internal/storage"
)

// capacity holds the derived numbers the planning tools share. Computed once
// per call instead of round-tripping through the JSON envelope.
type capacity struct {
	monthlyIncome  decimal.Decimal
	monthlyExpense decimal.Decimal
	monthlySavings decimal.Decimal
	savingsRate    decimal.Decimal // percent
	health         string
	byCategory     map[string]string
}

// analyzeCapacity derives monthly income/expense/savings from the last 90
// days of transaction history.
func (t *Tools) analyzeCapacity(ctx context.Context) (*capacity, error) {
	now := t.now()
	start := now.AddDate(0, 0, -90).Format(dateLayout)
	end := now.Format(dateLayout)

	txs, err := t.store.ListTransactions(ctx, t.userID, storage.TransactionFilter{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, err
	}

	three := decimal.NewFromInt(3)
	income, expense := decimal.Zero, decimal.Zero
	totals := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.IsExpense() {
			expense = expense.Add(tx.Amount.Abs())
			totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Abs())
		} else {
			income = income.Add(tx.Amount)
		}
	}

	c := &capacity{
		monthlyIncome:  income.Div(three).Round(2),
		monthlyExpense: expense.Div(three).Round(2),
		byCategory:     map[string]string{},
	}
	for category, total := range totals {
		c.byCategory[category] = total.String()
	}
	c.monthlySavings = c.monthlyIncome.Sub(c.monthlyExpense)

	if c.monthlySavings.IsPositive() {
		if c.monthlyIncome.IsPositive() {
			c.savingsRate = c.monthlySavings.Div(c.monthlyIncome).Mul(hundred).Round(2)
		}
		switch {
		case c.savingsRate.GreaterThan(decimal.NewFromInt(20)):
			c.health = "优秀"
		case c.savingsRate.GreaterThan(decimal.NewFromInt(10)):
			c.health = "良好"
		default:
			c.health = "一般"
		}
	} else {
		c.health = "需要改善"
		c.savingsRate = decimal.Zero
	}

	return c, nil
}

func planningRecommendations(goalType string, monthlySavings, savingsRate decimal.Decimal) []string {
	var recs []string

	if savingsRate.LessThan(decimal.NewFromInt(10)) {
		recs = append(recs,
			"建议控制每月支出，目标储蓄率应达到10%以上",
			"可以考虑减少非必要支出，如娱乐、购物等")
	}

	switch goalType {
	case "saving":
		if monthlySavings.LessThan(decimal.NewFromInt(1000)) {
			recs = append(recs, "每月储蓄金额较低，建议制定具体的储蓄计划")
		}
	case "investment":
		if savingsRate.LessThan(decimal.NewFromInt(15)) {
			recs = append(recs, "投资前建议先建立3-6个月的应急基金")
		}
	case "purchase":
		if monthlySavings.LessThan(decimal.NewFromInt(500)) {
			recs = append(recs, "大额消费前建议先积累一定的储蓄")
		} else {
			recs = append(recs, "当前储蓄能力可以支持合理的消费计划")
		}
	}

	return recs
}

// AnalyzeCapacityArgs are the arguments of the analyze_financial_capacity tool.
type AnalyzeCapacityArgs struct {
	GoalType string `json:"goal_type,omitempty"` // saving/investment/purchase
}

// AnalyzeCapacity reports the user's ability to fund a financial goal from
// the last 90 days of history.
func (t *Tools) AnalyzeCapacity(ctx context.Context, args AnalyzeCapacityArgs) Result {
	goalType := args.GoalType
	if goalType == "" {
		goalType = "general"
	}

	c, err := t.analyzeCapacity(ctx)
	if err != nil {
		return Error(fmt.Sprintf("财务能力分析失败: %v", err))
	}

	return Success(fmt.Sprintf("最近3个月月均储蓄%s元，财务状况%s", c.monthlySavings, c.health)).
		With("analysis_period", "最近3个月").
		With("monthly_income", c.monthlyIncome.String()).
		With("monthly_expense", c.monthlyExpense.String()).
		With("monthly_savings", c.monthlySavings.String()).
		With("savings_rate", c.savingsRate.String()).
		With("financial_health", c.health).
		With("expense_by_category", c.byCategory).
		With("recommendations", planningRecommendations(goalType, c.monthlySavings, c.savingsRate))
}

// CreatePlanArgs are the arguments of the create_financial_plan tool.
type CreatePlanArgs struct {
	GoalName   string          `json:"goal_name"`
	GoalAmount decimal.Decimal `json:"goal_amount"`
	TargetDate string          `json:"target_date"`
	GoalType   string          `json:"goal_type,omitempty"`
}

// CreatePlan derives a staged savings plan toward a goal. The plan is a pure
// computation over history; goals are not persisted.
func (t *Tools) CreatePlan(ctx context.Context, args CreatePlanArgs) Result {
	if args.GoalName == "" {
		return Error("请提供目标名称")
	}
	if !args.GoalAmount.IsPositive() {
		return Error("目标金额必须大于0")
	}
	target, err := time.Parse(dateLayout, args.TargetDate)
	if err != nil {
		return Error("日期格式错误，应为YYYY-MM-DD")
	}

	c, err2 := t.analyzeCapacity(ctx)
	if err2 != nil {
		return Error(fmt.Sprintf("无法分析财务能力，无法创建计划: %v", err2))
	}
	if !c.monthlySavings.IsPositive() {
		return Error("当前月储蓄为负数，请先改善财务状况")
	}

	monthsNeeded := args.GoalAmount.Div(c.monthlySavings).IntPart()
	if monthsNeeded < 1 {
		monthsNeeded = 1
	}
	requiredMonthly := args.GoalAmount.Div(decimal.NewFromInt(monthsNeeded)).Round(2)

	now := t.now()
	daysAvailable := target.Sub(now).Hours() / 24
	if float64(monthsNeeded) > daysAvailable/30 {
		suggested := now.AddDate(0, 0, int(monthsNeeded)*30)
		return Warning(fmt.Sprintf("按当前储蓄能力，需要%d个月才能达到目标", monthsNeeded)).
			With("suggested_date", suggested.Format(dateLayout)).
			With("monthly_savings", c.monthlySavings.String()).
			With("required_monthly_savings", requiredMonthly.String())
	}

	milestones := make([]map[string]any, 0, monthsNeeded)
	for i := int64(1); i <= monthsNeeded; i++ {
		progress := float64(i) / float64(monthsNeeded)
		amount := args.GoalAmount.Mul(decimal.NewFromFloat(progress)).Round(2)
		milestones = append(milestones, map[string]any{
			"month":         i,
			"target_amount": amount.String(),
			"target_date":   now.AddDate(0, 0, int(i)*30).Format(dateLayout),
		})
	}

	plan := map[string]any{
		"goal_name":                args.GoalName,
		"goal_amount":              args.GoalAmount.String(),
		"target_date":              args.TargetDate,
		"goal_type":                args.GoalType,
		"months_needed":            monthsNeeded,
		"monthly_savings":          c.monthlySavings.String(),
		"required_monthly_savings": requiredMonthly.String(),
		"milestones":               milestones,
	}

	return Success(fmt.Sprintf("财务计划创建成功！预计%d个月可以实现目标", monthsNeeded)).
		With("plan", plan)
}

// TrackGoalProgressArgs are the arguments of the track_goal_progress tool.
type TrackGoalProgressArgs struct {
	GoalName string `json:"goal_name,omitempty"`
}

// TrackGoalProgress returns illustrative goal figures. Goals are not
// persisted anywhere, so the numbers are placeholders rather than real state;
// the saver/planner prompts present them as examples.
func (t *Tools) TrackGoalProgress(ctx context.Context, args TrackGoalProgressArgs) Result {
	goals := []map[string]any{
		{
			"goal_name":           "应急基金",
			"target_amount":       "10000",
			"current_amount":      "0",
			"target_date":         "2026-12-31",
			"progress_percentage": "0",
		},
		{
			"goal_name":           "旅行基金",
			"target_amount":       "5000",
			"current_amount":      "0",
			"target_date":         "2026-06-30",
			"progress_percentage": "0",
		},
	}

	if args.GoalName != "" {
		filtered := goals[:0]
		for _, g := range goals {
			if g["goal_name"] == args.GoalName {
				filtered = append(filtered, g)
			}
		}
		goals = filtered
	}

	return Success(fmt.Sprintf("共%d个目标", len(goals))).
		With("goals", goals).
		With("total_savings", "0")
}

// AdjustPlanArgs are the arguments of the adjust_financial_plan tool.
type AdjustPlanArgs struct {
	GoalName  string           `json:"goal_name"`
	NewAmount *decimal.Decimal `json:"new_amount,omitempty"`
	NewDate   string           `json:"new_date,omitempty"`
}

// AdjustPlan acknowledges a plan adjustment. Like goal tracking it has no
// persisted state behind it.
func (t *Tools) AdjustPlan(ctx context.Context, args AdjustPlanArgs) Result {
	if args.GoalName == "" {
		return Error("请提供目标名称")
	}

	adjustments := map[string]any{}
	if args.NewAmount != nil {
		adjustments["new_amount"] = args.NewAmount.String()
	}
	if args.NewDate != "" {
		adjustments["new_date"] = args.NewDate
	}

	return Success(fmt.Sprintf("已调整目标 '%s' 的计划", args.GoalName)).
		With("adjustments", adjustments)
}

// GoalRecommendationsArgs are the arguments of the get_goal_recommendations tool.
type GoalRecommendationsArgs struct {
	CurrentSavings *decimal.Decimal `json:"current_savings,omitempty"`
}

// GoalRecommendations suggests the next financial goal for the user's
// savings tier. When current savings are not supplied they are estimated as
// three months of derived savings capacity.
func (t *Tools) GoalRecommendations(ctx context.Context, args GoalRecommendationsArgs) Result {
	var savings decimal.Decimal
	if args.CurrentSavings != nil {
		savings = *args.CurrentSavings
	} else {
		c, err := t.analyzeCapacity(ctx)
		if err != nil {
			return Error(fmt.Sprintf("获取目标建议失败: %v", err))
		}
		savings = c.monthlySavings.Mul(decimal.NewFromInt(3))
	}

	var recs []map[string]any
	switch {
	case savings.LessThan(decimal.NewFromInt(3000)):
		recs = append(recs, map[string]any{
			"type":        "emergency_fund",
			"name":        "建立应急基金",
			"description": "建议先建立3-6个月生活费的应急基金",
			"amount":      "10000",
			"priority":    "高",
		})
	case savings.LessThan(decimal.NewFromInt(10000)):
		recs = append(recs, map[string]any{
			"type":        "debt_repayment",
			"name":        "偿还高息债务",
			"description": "如果有高息债务，建议优先偿还",
			"amount":      "0",
			"priority":    "高",
		})
	default:
		half := savings.Div(decimal.NewFromInt(2)).Round(2)
		recs = append(recs, map[string]any{
			"type":        "investment",
			"name":        "开始投资",
			"description": "可以考虑低风险投资产品",
			"amount":      half.String(),
			"priority":    "中",
		})
	}

	return Success(fmt.Sprintf("为你准备了%d条目标建议", len(recs))).
		With("recommendations", recs).
		With("current_savings", savings.String())
}
