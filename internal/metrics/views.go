package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// monthlySeries buckets dated transactions into the SeriesMonths months
// ending at current, oldest first. Goal contributions count as expense.
func monthlySeries(entries []entry, current month) []MonthTotals {
	first := current.add(-(SeriesMonths - 1))
	series := make([]MonthTotals, SeriesMonths)
	index := make(map[month]int, SeriesMonths)
	for i := range series {
		m := first.add(i)
		index[m] = i
		series[i] = MonthTotals{Month: m.label(), Income: decimal.Zero, Expense: decimal.Zero}
	}

	for _, e := range entries {
		if !e.dated {
			continue
		}
		i, ok := index[e.month]
		if !ok {
			continue
		}
		switch {
		case e.tx.Type == models.TransactionTypeIncome:
			series[i].Income = series[i].Income.Add(e.amount)
		case e.outflow():
			series[i].Expense = series[i].Expense.Add(e.amount)
		}
	}
	return series
}

// categoryTotals sums expense amounts per tag for the entries accepted by
// keep. Categories keep first-seen order; zero totals are dropped.
func categoryTotals(entries []entry, keep func(entry) bool) []CategoryTotal {
	var order []string
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.tx.Type != models.TransactionTypeExpense || !keep(e) {
			continue
		}
		tag := e.tx.Tag
		if strings.TrimSpace(tag) == "" {
			tag = UncategorizedTag
		}
		cur, seen := totals[tag]
		if !seen {
			order = append(order, tag)
			cur = decimal.Zero
		}
		totals[tag] = cur.Add(e.amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, tag := range order {
		if totals[tag].IsZero() {
			continue
		}
		out = append(out, CategoryTotal{Category: tag, Total: totals[tag]})
	}
	return out
}

// monthFigures holds one month's income, outflow and clamped savings.
type monthFigures struct {
	income  decimal.Decimal
	expense decimal.Decimal
}

func (f monthFigures) savings() decimal.Decimal {
	return decimal.Max(decimal.Zero, f.income.Sub(f.expense))
}

func figuresFor(entries []entry, m month) monthFigures {
	f := monthFigures{income: decimal.Zero, expense: decimal.Zero}
	for _, e := range entries {
		if !e.in(m) {
			continue
		}
		switch {
		case e.tx.Type == models.TransactionTypeIncome:
			f.income = f.income.Add(e.amount)
		case e.outflow():
			f.expense = f.expense.Add(e.amount)
		}
	}
	return f
}

// DeltaPercent is the month-over-month change of a non-negative figure.
// Growth from nothing counts as +100%; no activity in either month is 0%.
func DeltaPercent(current, previous decimal.Decimal) float64 {
	switch {
	case previous.IsPositive():
		return current.Sub(previous).Div(previous).Mul(hundred).InexactFloat64()
	case current.IsPositive():
		return 100
	default:
		return 0
	}
}

func kpis(balance decimal.Decimal, entries []entry, current month) []KPI {
	cur := figuresFor(entries, current)
	prev := figuresFor(entries, current.add(-1))

	delta := func(c, p decimal.Decimal) *float64 {
		v := DeltaPercent(c, p)
		return &v
	}

	return []KPI{
		{Key: "balance", Label: "Balance", Value: balance},
		{Key: "income", Label: "Income", Value: cur.income, DeltaPercent: delta(cur.income, prev.income)},
		{Key: "expenses", Label: "Expenses", Value: cur.expense, DeltaPercent: delta(cur.expense, prev.expense)},
		{Key: "savings", Label: "Savings", Value: cur.savings(), DeltaPercent: delta(cur.savings(), prev.savings())},
	}
}

func budgetStatuses(budgets []models.Budget, entries []entry, current month) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := decimal.Zero
		for _, e := range entries {
			if e.tx.Type == models.TransactionTypeExpense && e.in(current) && strings.EqualFold(e.tx.Tag, b.Category) {
				spent = spent.Add(e.amount)
			}
		}
		out = append(out, BudgetStatus{
			ID:       b.ID,
			Category: b.Category,
			Spent:    spent,
			Limit:    b.Limit,
			Percent:  clampedPercent(spent, b.Limit),
			Over:     spent.GreaterThan(b.Limit),
		})
	}
	return out
}

func insights(entries []entry, current month) Insights {
	f := figuresFor(entries, current)
	ins := Insights{
		ThisMonthSavings: f.income.Sub(f.expense),
		TopCategory:      TopCategory{Name: "", Total: decimal.Zero},
	}
	if f.income.IsPositive() {
		ins.SavingsRate = f.income.Sub(f.expense).Div(f.income).InexactFloat64()
	}

	// Strict comparison keeps the first category on ties.
	for _, c := range categoryTotals(entries, func(e entry) bool { return e.in(current) }) {
		if c.Total.GreaterThan(ins.TopCategory.Total) {
			ins.TopCategory = TopCategory{Name: c.Category, Total: c.Total}
		}
	}

	var largest *entry
	for i := range entries {
		e := &entries[i]
		if e.tx.Type != models.TransactionTypeExpense || !e.in(current) {
			continue
		}
		if largest == nil || e.amount.GreaterThan(largest.amount) {
			largest = e
		}
	}
	if largest != nil {
		tx := *largest.tx
		tx.Amount = largest.amount
		ins.LargestExpense = &tx
	}
	return ins
}

// recentRows returns the newest limit transactions. The sort is stable so
// same-day entries keep their snapshot order; undated rows sort last.
func recentRows(entries []entry, limit int) []RecentRow {
	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].tx.Date.After(sorted[j].tx.Date)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]RecentRow, 0, len(sorted))
	for _, e := range sorted {
		amount := e.amount
		if e.outflow() {
			amount = amount.Neg()
		}
		var date *time.Time
		if e.dated {
			d := e.tx.Date
			date = &d
		}
		rows = append(rows, RecentRow{
			ID:     e.tx.ID,
			Name:   e.tx.Name,
			Type:   e.tx.Type,
			Date:   date,
			Amount: amount,
			Tag:    e.tx.Tag,
		})
	}
	return rows
}
