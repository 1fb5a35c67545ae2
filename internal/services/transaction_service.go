package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

var transactionSorts = pagination.SortColumns{
	"date":   "date DESC",
	"amount": "amount DESC",
}

// transactionService is the GORM-backed transaction store.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// ListTransactions returns every transaction owned by the user.
func (s *transactionService) ListTransactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Order("id").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// SearchTransactions retrieves a paginated, filtered and sorted page of the
// user's transactions. Without a sort key rows come back in insertion order.
func (s *transactionService) SearchTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(
		pagination.OrderBy(transactionSorts, filter.SortBy, "created_at"),
		pagination.Paginate(page),
	).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if query := strings.TrimSpace(f.Query); query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	return q
}

// CreateTransaction validates and stores a new transaction. Goal
// contributions must reference one of the user's goals; their name and tag
// are set from the goal.
func (s *transactionService) CreateTransaction(userID string, input CreateTransactionInput) (*models.Transaction, error) {
	if !input.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	transaction := &models.Transaction{
		UserID: userID,
		Type:   input.Type,
		Name:   strings.TrimSpace(input.Name),
		Tag:    strings.TrimSpace(input.Tag),
		Amount: input.Amount,
		Date:   input.Date,
	}

	if input.Type == models.TransactionTypeGoal {
		if input.GoalID == nil || *input.GoalID == "" {
			return nil, apperrors.ErrGoalRequired
		}
		if !input.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		goal, err := findGoal(s.db, userID, *input.GoalID)
		if err != nil {
			return nil, err
		}
		goalID := goal.ID
		transaction.GoalID = &goalID
		transaction.Name = models.ContributionName(goal.Name)
		transaction.Tag = models.SavingsGoalTag
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransactions deletes the listed transactions owned by the user and
// returns how many were removed. Unknown ids are ignored.
func (s *transactionService) DeleteTransactions(userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one transaction id is required")
	}
	res := s.db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// ResetTransactions deletes every transaction of the user.
func (s *transactionService) ResetTransactions(userID string) (int64, error) {
	res := s.db.Where("user_id = ?", userID).Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

func findGoal(db *gorm.DB, userID, goalID string) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}
