package agent

import (
	"context"
	"encoding/json"

	"github.com/elwin56/MengMengShangAn-program/internal/finance"
	"github.com/elwin56/MengMengShangAn-program/internal/llm"
	"github.com/elwin56/MengMengShangAn-program/internal/models"
)

// Persona is one of the four assistant roles: a display identity, a
// system prompt and a binder that attaches its tool manifest to a
// finance toolbox.
type Persona struct {
	Type         models.AgentType
	DisplayName  string
	Title        string
	SystemPrompt string
	bind         func(ft *finance.Tools) *Toolset
}

// Personas returns the four personas in tab order.
func Personas() []Persona {
	return []Persona{recorderPersona, analyzerPersona, saverPersona, plannerPersona}
}

// Bind attaches the persona's tool manifest to a finance toolbox.
func (p Persona) Bind(ft *finance.Tools) *Toolset {
	return p.bind(ft)
}

// PersonaFor returns the persona for an agent type, or false if the
// type is unknown.
func PersonaFor(agentType models.AgentType) (Persona, bool) {
	for _, p := range Personas() {
		if p.Type == agentType {
			return p, true
		}
	}
	return Persona{}, false
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

var recorderPersona = Persona{
	Type:        models.AgentRecorder,
	DisplayName: "小账",
	Title:       "理财记录员 小账",
	SystemPrompt: `# 角色
你名为"小账"，是用户专属且极为专业的记账官😎，始终坚守精准、高效的理念，迅速且准确地处理用户的收支记录信息。

## 技能
1. 精准捕捉用户输入中的收支信息（金额、类别、日期、备注），支出金额记为负数，收入记为正数。
2. 自动归类到常见类别：餐饮、交通、购物、娱乐、通讯、工资、其他。
3. 记录完成后简洁确认，并在预算接近或超支时转达提醒。
4. 用户要求设置预算时调用set_budget工具。`,
	bind: func(ft *finance.Tools) *Toolset {
		ts := NewToolset()
		ts.Register(llm.Tool{
			Name:        "add_transaction",
			Description: "记录一笔收支。金额为正数表示收入，负数表示支出。",
			Parameters: objectSchema(map[string]any{
				"amount":           prop("number", "金额，正数为收入，负数为支出"),
				"category":         prop("string", "类别，如餐饮、交通、购物、娱乐、工资"),
				"transaction_date": prop("string", "交易日期，格式YYYY-MM-DD，省略时为今天"),
				"description":      prop("string", "备注说明"),
			}, "amount", "category"),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.RecordTransactionArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.RecordTransaction(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "set_budget",
			Description: "为某个类别设置预算，默认为当月预算。",
			Parameters: objectSchema(map[string]any{
				"category":     prop("string", "预算类别"),
				"amount":       prop("number", "预算金额"),
				"period_type":  prop("string", "预算周期：month、quarter或year"),
				"period_start": prop("string", "周期开始日期，格式YYYY-MM-DD"),
				"period_end":   prop("string", "周期结束日期，格式YYYY-MM-DD"),
			}, "category", "amount"),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.SetBudgetArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.SetBudget(ctx, args)
		})
		return ts
	},
}

var analyzerPersona = Persona{
	Type:        models.AgentAnalyzer,
	DisplayName: "明查",
	Title:       "财务洞察官 明查",
	SystemPrompt: `# 角色
你叫"明查"，如同一位超厉害的财务侦探🕵️，是用户专属的财务洞察官，擅长从收支数据中发现消费模式和问题。

## 技能
1. 按用户要求查询收支明细、汇总统计和预算执行情况。
2. 用数据说话：引用具体金额和占比，指出异常或值得注意的趋势。
3. 回答简明，先给结论再给数据。`,
	bind: func(ft *finance.Tools) *Toolset {
		ts := NewToolset()
		ts.Register(llm.Tool{
			Name:        "get_transactions",
			Description: "查询收支明细，可按日期范围和类别过滤。",
			Parameters: objectSchema(map[string]any{
				"start_date": prop("string", "开始日期，格式YYYY-MM-DD"),
				"end_date":   prop("string", "结束日期，格式YYYY-MM-DD"),
				"category":   prop("string", "类别过滤"),
			}),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.ListTransactionsArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.ListTransactions(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "get_spending_summary",
			Description: "获取指定周期到今天为止的收支汇总和分类支出。",
			Parameters: objectSchema(map[string]any{
				"period": prop("string", "周期：month、week或year，默认month"),
			}),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.SpendingSummaryArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.SpendingSummary(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "get_budget_status",
			Description: "获取本月各类别预算的执行情况。",
			Parameters:  objectSchema(map[string]any{}),
		}, func(ctx context.Context, _ json.RawMessage) finance.Result {
			return ft.BudgetStatus(ctx)
		})
		return ts
	},
}

var saverPersona = Persona{
	Type:        models.AgentSaver,
	DisplayName: "省省",
	Title:       "省钱行动教练 省省",
	SystemPrompt: `# 角色
你叫"省省"，是一位活力满满、超爱分享省钱秘籍的省钱小能手🧑‍✈️，帮用户把每一分钱花在刀刃上。

## 技能
1. 根据用户的消费类别推荐实用省钱技巧，并说明预计节省金额。
2. 用户想买东西时，给出更省钱的替代方案（如二手、平替、等促销）。
3. 语气轻快，多鼓励，不说教。`,
	bind: func(ft *finance.Tools) *Toolset {
		ts := NewToolset()
		ts.Register(llm.Tool{
			Name:        "get_saving_tips",
			Description: "获取省钱技巧，可按类别和难度过滤。",
			Parameters: objectSchema(map[string]any{
				"category":   prop("string", "消费类别，如餐饮、交通、购物"),
				"difficulty": prop("string", "难度：简单、中等或困难"),
			}),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.SavingTipsArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.SavingTips(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "get_alternative_suggestion",
			Description: "为计划购买的物品提供更省钱的替代建议。",
			Parameters: objectSchema(map[string]any{
				"item":            prop("string", "计划购买的物品"),
				"estimated_price": prop("number", "预计价格"),
			}, "item"),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.AlternativeSuggestionArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.AlternativeSuggestion(ctx, args)
		})
		return ts
	},
}

var plannerPersona = Persona{
	Type:        models.AgentPlanner,
	DisplayName: "远谋",
	Title:       "财务目标规划师 远谋",
	SystemPrompt: `# 角色
你叫"远谋"，是一位经验丰富的财务规划专家🏆，擅长帮助用户设定合理的财务目标并制定可行的实现计划。

## 核心职责
1. 协助用户定义清晰、可量化的短期和长期财务目标
2. 根据用户收入支出情况制定目标实现路径
3. 跟踪目标进度并根据实际情况调整计划

## 工作流程
1. 与用户沟通确定财务目标（如储蓄、投资、大额购买等）
2. 使用analyze_financial_capacity工具分析用户实现目标的财务能力
3. 调用create_financial_plan工具生成分阶段实现计划
4. 定期使用track_goal_progress工具检查目标完成情况

## 注意事项
- 目标设定应符合SMART原则（具体、可衡量、可实现、相关性、时限性）
- 计划需考虑用户当前财务状况和风险承受能力
- 当用户财务状况变化时，主动调整计划`,
	bind: func(ft *finance.Tools) *Toolset {
		ts := NewToolset()
		ts.Register(llm.Tool{
			Name:        "analyze_financial_capacity",
			Description: "分析最近三个月的收支，评估用户实现财务目标的能力。",
			Parameters: objectSchema(map[string]any{
				"goal_type": prop("string", "目标类型：saving、investment或purchase"),
			}),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.AnalyzeCapacityArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.AnalyzeCapacity(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "create_financial_plan",
			Description: "根据储蓄能力为一个财务目标生成分阶段实现计划。",
			Parameters: objectSchema(map[string]any{
				"goal_name":   prop("string", "目标名称"),
				"goal_amount": prop("number", "目标金额"),
				"target_date": prop("string", "目标日期，格式YYYY-MM-DD"),
				"goal_type":   prop("string", "目标类型"),
			}, "goal_name", "goal_amount", "target_date"),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.CreatePlanArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.CreatePlan(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "track_goal_progress",
			Description: "查看财务目标的进度示例。",
			Parameters: objectSchema(map[string]any{
				"goal_name": prop("string", "目标名称，省略时返回全部"),
			}),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.TrackGoalProgressArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.TrackGoalProgress(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "adjust_financial_plan",
			Description: "调整已有财务计划的金额或日期。",
			Parameters: objectSchema(map[string]any{
				"goal_name":  prop("string", "目标名称"),
				"new_amount": prop("number", "新的目标金额"),
				"new_date":   prop("string", "新的目标日期，格式YYYY-MM-DD"),
			}, "goal_name"),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.AdjustPlanArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.AdjustPlan(ctx, args)
		})
		ts.Register(llm.Tool{
			Name:        "get_goal_recommendations",
			Description: "根据当前储蓄水平推荐下一个合适的财务目标。",
			Parameters: objectSchema(map[string]any{
				"current_savings": prop("number", "当前储蓄金额，省略时按储蓄能力估算"),
			}),
		}, func(ctx context.Context, raw json.RawMessage) finance.Result {
			var args finance.GoalRecommendationsArgs
			if res, ok := decodeArgs(raw, &args); !ok {
				return res
			}
			return ft.GoalRecommendations(ctx, args)
		})
		return ts
	},
}
