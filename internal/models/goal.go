package models

import "github.com/shopspring/decimal"

// SavingsGoal is a named savings target. Saved is derived from linked
// goal transactions and is never persisted.
type SavingsGoal struct {
	Base
	UserID string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string          `gorm:"not null" json:"name"`
	Target decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"target"`
	Saved  decimal.Decimal `gorm:"-" json:"saved"`
}

// DefaultGoals are seeded for every new user.
func DefaultGoals() []SavingsGoal {
	return []SavingsGoal{
		{Name: "iPhone 16 Pro", Target: decimal.NewFromInt(140000)},
		{Name: "Goa Trip", Target: decimal.NewFromInt(40000)},
	}
}
