package models

import "github.com/shopspring/decimal"

// Budget is a monthly spending limit for one expense category.
type Budget struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Category string          `gorm:"not null" json:"category"`
	Limit    decimal.Decimal `gorm:"column:spend_limit;type:numeric(20,2);not null" json:"limit"`
}

// DefaultBudgets are seeded for every new user.
func DefaultBudgets() []Budget {
	return []Budget{
		{Category: "food", Limit: decimal.NewFromInt(10000)},
		{Category: "travel", Limit: decimal.NewFromInt(8000)},
		{Category: "shopping", Limit: decimal.NewFromInt(5000)},
	}
}
