package metrics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// Warning reasons.
const (
	ReasonMissingDate    = "missing_date"
	ReasonNegativeAmount = "negative_amount"
	ReasonUnknownType    = "unknown_type"
)

// Warning reports a record that was coerced or left out of some views.
type Warning struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

var hundred = decimal.NewFromInt(100)

// month identifies a calendar month independent of time zone.
type month struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) month {
	return month{year: t.Year(), month: t.Month()}
}

// add returns the month n months after m (n may be negative).
func (m month) add(n int) month {
	return monthOf(time.Date(m.year, m.month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

func (m month) label() string {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06")
}

// entry is a transaction with its amount coerced and its month resolved.
type entry struct {
	tx     *models.Transaction
	amount decimal.Decimal
	dated  bool
	month  month
}

func (e entry) in(m month) bool {
	return e.dated && e.month == m
}

func (e entry) outflow() bool {
	return e.tx.Type == models.TransactionTypeExpense || e.tx.Type == models.TransactionTypeGoal
}

// normalize coerces amounts and resolves months once so every view works on
// the same cleaned snapshot.
func normalize(txs []models.Transaction) ([]entry, []Warning) {
	entries := make([]entry, 0, len(txs))
	warnings := make([]Warning, 0)

	for i := range txs {
		tx := &txs[i]
		e := entry{tx: tx, amount: tx.Amount}

		if e.amount.IsNegative() {
			e.amount = decimal.Zero
			warnings = append(warnings, Warning{TransactionID: tx.ID, Reason: ReasonNegativeAmount})
		}
		if !tx.Type.Valid() {
			warnings = append(warnings, Warning{TransactionID: tx.ID, Reason: ReasonUnknownType})
		}
		if tx.HasDate() {
			e.dated = true
			e.month = monthOf(tx.Date)
		} else {
			warnings = append(warnings, Warning{TransactionID: tx.ID, Reason: ReasonMissingDate})
		}

		entries = append(entries, e)
	}
	return entries, warnings
}

// ParseAmount coerces free text into a non-negative amount. Blank or
// non-numeric input yields zero; thousands separators, a leading currency
// symbol and a sign are dropped since direction comes from the transaction type.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "₹$€£ ")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

// clampedPercent returns round(part / max(1, whole) * 100) clamped to [0, 100].
func clampedPercent(part, whole decimal.Decimal) int64 {
	den := decimal.Max(whole, decimal.NewFromInt(1))
	pct := part.Div(den).Mul(hundred).Round(0)
	switch {
	case pct.GreaterThanOrEqual(hundred):
		return 100
	case pct.IsNegative():
		return 0
	}
	return pct.IntPart()
}
