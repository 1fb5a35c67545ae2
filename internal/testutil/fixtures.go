package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email. No default
// goals or budgets are seeded.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction stores a transaction with the given type, amount and date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, name, tag string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: userID,
		Type:   txType,
		Name:   name,
		Tag:    tag,
		Amount: decimal.NewFromInt(amount),
		Date:   date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestGoal creates a savings goal with a unique name.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target int64) *models.SavingsGoal {
	t.Helper()
	return CreateTestGoalWithName(t, db, userID, fmt.Sprintf("Test Goal %d", nextID()), target)
}

// CreateTestGoalWithName creates a savings goal with the given name.
func CreateTestGoalWithName(t *testing.T, db *gorm.DB, userID, name string, target int64) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID: userID,
		Name:   name,
		Target: decimal.NewFromInt(target),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestContribution stores a goal transaction linked to goal by id.
func CreateTestContribution(t *testing.T, db *gorm.DB, goal *models.SavingsGoal, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	goalID := goal.ID
	tx := &models.Transaction{
		UserID: goal.UserID,
		Type:   models.TransactionTypeGoal,
		Name:   models.ContributionName(goal.Name),
		Tag:    models.SavingsGoalTag,
		Amount: decimal.NewFromInt(amount),
		Date:   date,
		GoalID: &goalID,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test contribution: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget for category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category string, limit int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Limit:    decimal.NewFromInt(limit),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
