package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/metrics"
	"fintrack/internal/models"
)

// goalService manages savings goals. Contributions are stored through the
// transaction service so every write path applies the same rules.
type goalService struct {
	db                 *gorm.DB
	transactionService TransactionServicer
	now                func() time.Time
}

// NewGoalService creates a new GoalServicer. now supplies the default
// contribution date.
func NewGoalService(db *gorm.DB, transactionService TransactionServicer, now func() time.Time) GoalServicer {
	if now == nil {
		now = time.Now
	}
	return &goalService{db: db, transactionService: transactionService, now: now}
}

// CreateGoal adds a savings goal. Names are unique per user since legacy
// contributions are linked by name.
func (s *goalService) CreateGoal(userID, name string, target decimal.Decimal) (*models.SavingsGoal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if !target.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must be greater than zero")
	}

	var count int64
	if err := s.db.Model(&models.SavingsGoal{}).Where("user_id = ? AND name = ?", userID, name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrGoalNameTaken
	}

	goal := &models.SavingsGoal{UserID: userID, Name: name, Target: target, Saved: decimal.Zero}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// ListGoals returns the user's goals with Saved recomputed from their
// linked contributions.
func (s *goalService) ListGoals(userID string) ([]models.SavingsGoal, error) {
	goals, err := s.ListGoalDefinitions(userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionService.ListTransactions(userID)
	if err != nil {
		return nil, err
	}
	for i, p := range metrics.Goals(goals, transactions) {
		goals[i].Saved = p.Saved
	}
	return goals, nil
}

// ListGoalDefinitions returns the user's goals as stored, with Saved left at
// zero, for callers that already hold the transaction list.
func (s *goalService) ListGoalDefinitions(userID string) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Order("id").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// GetGoalByID retrieves one of the user's goals.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.SavingsGoal, error) {
	return findGoal(s.db, userID, goalID)
}

// GetGoalByName retrieves the user's goal with the exact name.
func (s *goalService) GetGoalByName(userID, name string) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := s.db.Where("user_id = ? AND name = ?", userID, name).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// Contribute records a goal transaction. A zero date means today.
func (s *goalService) Contribute(userID, goalID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if date.IsZero() {
		date = Today(s.now())
	}
	return s.transactionService.CreateTransaction(userID, CreateTransactionInput{
		Type:   models.TransactionTypeGoal,
		Amount: amount,
		Date:   date,
		GoalID: &goalID,
	})
}

// DeleteGoal removes the goal and every transaction linked to it, by id or
// by the legacy contribution name, in one database transaction. It returns
// the number of transactions removed.
func (s *goalService) DeleteGoal(userID, goalID string) (int64, error) {
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := findGoal(tx, userID, goalID)
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ?", userID).
			Where(tx.Where("goal_id = ?", goal.ID).
				Or("goal_id IS NULL AND name = ?", models.ContributionName(goal.Name))).
			Delete(&models.Transaction{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		deleted = res.RowsAffected

		if err := tx.Delete(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Today returns the calendar date of t as midnight UTC, the form in which
// transaction dates are stored.
func Today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
