// Package metrics derives every dashboard view from a snapshot of a user's
// transactions, savings goals and budgets.
//
// Compute is a pure function: it performs no I/O, never reads the system
// clock and keeps no state between calls. Malformed records are coerced or
// skipped and reported as warnings; Compute never fails.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// RecentRowsLimit is the number of rows in the recent transactions table.
const RecentRowsLimit = 5

// SeriesMonths is the length of the trailing monthly income/expense series.
const SeriesMonths = 12

// UncategorizedTag groups expenses recorded without a tag.
const UncategorizedTag = "uncategorized"

// DashboardState is the full input of a computation.
type DashboardState struct {
	Transactions []models.Transaction
	Goals        []models.SavingsGoal
	Budgets      []models.Budget
}

// GoalProgress is a savings goal with its recomputed saved amount.
type GoalProgress struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Target  decimal.Decimal `json:"target"`
	Saved   decimal.Decimal `json:"saved"`
	Percent int64           `json:"percent"`
}

// MonthTotals is one bucket of the monthly series.
type MonthTotals struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is the summed expense amount for one tag.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// KPI is a headline figure with its change against the previous month.
// DeltaPercent is nil for figures that have no month-over-month comparison.
type KPI struct {
	Key          string          `json:"key"`
	Label        string          `json:"label"`
	Value        decimal.Decimal `json:"value"`
	DeltaPercent *float64        `json:"delta_percent"`
}

// BudgetStatus reports current-month spending against a budget. Percent is
// clamped to 100 for display; Over tells callers the limit was exceeded.
type BudgetStatus struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Limit    decimal.Decimal `json:"limit"`
	Percent  int64           `json:"percent"`
	Over     bool            `json:"over"`
}

// TopCategory is the current month's largest expense category.
type TopCategory struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// Insights summarises the current month.
type Insights struct {
	SavingsRate      float64             `json:"savings_rate"`
	ThisMonthSavings decimal.Decimal     `json:"this_month_savings"`
	TopCategory      TopCategory         `json:"top_category"`
	LargestExpense   *models.Transaction `json:"largest_expense"`
}

// RecentRow is a presentational transaction row. Amount is negative for
// money leaving the balance (expenses and goal contributions).
type RecentRow struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Type   models.TransactionType `json:"type"`
	Date   *time.Time             `json:"date"`
	Amount decimal.Decimal        `json:"amount"`
	Tag    string                 `json:"tag"`
}

// Dashboard is the complete derived view.
type Dashboard struct {
	AsOf                 time.Time       `json:"as_of"`
	Balance              decimal.Decimal `json:"balance"`
	IncomeSum            decimal.Decimal `json:"income_sum"`
	ExpensesSum          decimal.Decimal `json:"expenses_sum"`
	GoalContributionsSum decimal.Decimal `json:"goal_contributions_sum"`
	Goals                []GoalProgress  `json:"goals"`
	MonthlySeries        []MonthTotals   `json:"monthly_series"`
	Categories           []CategoryTotal `json:"categories"`
	KPIs                 []KPI           `json:"kpis"`
	Budgets              []BudgetStatus  `json:"budgets"`
	Insights             Insights        `json:"insights"`
	RecentRows           []RecentRow     `json:"recent_rows"`
	Warnings             []Warning       `json:"warnings"`
}

// Compute derives the dashboard for state as seen at now. The current and
// previous months are taken from now in its own location.
func Compute(state DashboardState, now time.Time) *Dashboard {
	entries, warnings := normalize(state.Transactions)
	current := monthOf(now)

	d := &Dashboard{
		AsOf:     now,
		Warnings: warnings,
	}

	computeSums(d, entries)
	d.Goals = goalProgress(state.Goals, entries)
	d.MonthlySeries = monthlySeries(entries, current)
	d.Categories = categoryTotals(entries, func(entry) bool { return true })
	d.KPIs = kpis(d.Balance, entries, current)
	d.Budgets = budgetStatuses(state.Budgets, entries, current)
	d.Insights = insights(entries, current)
	d.RecentRows = recentRows(entries, RecentRowsLimit)

	return d
}

// Goals recomputes saved amounts for goals from txs without building the
// rest of the dashboard.
func Goals(goals []models.SavingsGoal, txs []models.Transaction) []GoalProgress {
	entries, _ := normalize(txs)
	return goalProgress(goals, entries)
}

func computeSums(d *Dashboard, entries []entry) {
	income, expenses, goals := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.tx.Type {
		case models.TransactionTypeIncome:
			income = income.Add(e.amount)
		case models.TransactionTypeExpense:
			expenses = expenses.Add(e.amount)
		case models.TransactionTypeGoal:
			goals = goals.Add(e.amount)
		}
	}
	d.IncomeSum = income
	d.ExpensesSum = expenses
	d.GoalContributionsSum = goals
	d.Balance = income.Sub(expenses).Sub(goals)
}

// goalProgress keeps every configured goal field and overwrites only Saved.
// Contributions match by goal id; rows without one fall back to the
// "Contribution to <name>" naming convention.
func goalProgress(goals []models.SavingsGoal, entries []entry) []GoalProgress {
	out := make([]GoalProgress, len(goals))
	byID := make(map[string]int, len(goals))
	byName := make(map[string][]int, len(goals))
	for i, g := range goals {
		out[i] = GoalProgress{ID: g.ID, Name: g.Name, Target: g.Target, Saved: decimal.Zero}
		if g.ID != "" {
			byID[g.ID] = i
		}
		key := models.ContributionName(g.Name)
		byName[key] = append(byName[key], i)
	}

	for _, e := range entries {
		if e.tx.GoalID != nil && *e.tx.GoalID != "" {
			if i, ok := byID[*e.tx.GoalID]; ok && e.tx.Type == models.TransactionTypeGoal {
				out[i].Saved = out[i].Saved.Add(e.amount)
			}
			continue
		}
		for _, i := range byName[e.tx.Name] {
			out[i].Saved = out[i].Saved.Add(e.amount)
		}
	}

	for i := range out {
		out[i].Percent = clampedPercent(out[i].Saved, out[i].Target)
	}
	return out
}
