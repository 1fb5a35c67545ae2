package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeGoal    TransactionType = "goal"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeGoal:
		return true
	}
	return false
}

// SavingsGoalTag is the fixed tag carried by every goal contribution.
const SavingsGoalTag = "Savings Goal"

// ContributionPrefix prefixes the name of every goal contribution.
const ContributionPrefix = "Contribution to "

// ContributionName returns the canonical transaction name for a contribution to goalName.
func ContributionName(goalName string) string {
	return ContributionPrefix + goalName
}

// Transaction is a single income, expense or goal contribution.
// Records are never updated in place; they are created and bulk-deleted only.
type Transaction struct {
	Base
	UserID string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   TransactionType `gorm:"not null" json:"type"`
	Name   string          `gorm:"not null;default:''" json:"name"`
	Tag    string          `gorm:"not null;default:''" json:"tag"`
	Amount decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	// Date is a calendar date; the zero value means the date is unknown.
	Date time.Time `gorm:"type:date;index" json:"date"`

	// GoalID links goal contributions to their goal. Legacy rows may only
	// carry the "Contribution to <name>" naming convention.
	GoalID *string `gorm:"type:uuid;index" json:"goal_id,omitempty"`
}

// HasDate reports whether the transaction carries a usable date.
func (t *Transaction) HasDate() bool {
	return !t.Date.IsZero()
}
