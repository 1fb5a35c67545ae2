package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// TransactionFilter holds optional search parameters for listing transactions.
type TransactionFilter struct {
	Query  string
	Type   *models.TransactionType
	SortBy string
}

// CreateTransactionInput describes a new transaction. A zero Date is stored
// as a missing date.
type CreateTransactionInput struct {
	Type   models.TransactionType
	Name   string
	Tag    string
	Amount decimal.Decimal
	Date   time.Time
	GoalID *string
}

// TransactionServicer is the per-user transaction store.
type TransactionServicer interface {
	ListTransactions(userID string) ([]models.Transaction, error)
	SearchTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	CreateTransaction(userID string, input CreateTransactionInput) (*models.Transaction, error)
	DeleteTransactions(userID string, ids []string) (int64, error)
	ResetTransactions(userID string) (int64, error)
}

// GoalServicer defines the contract for savings goals.
type GoalServicer interface {
	CreateGoal(userID, name string, target decimal.Decimal) (*models.SavingsGoal, error)
	ListGoals(userID string) ([]models.SavingsGoal, error)
	ListGoalDefinitions(userID string) ([]models.SavingsGoal, error)
	GetGoalByID(userID, goalID string) (*models.SavingsGoal, error)
	GetGoalByName(userID, name string) (*models.SavingsGoal, error)
	Contribute(userID, goalID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error)
	DeleteGoal(userID, goalID string) (int64, error)
}

// BudgetServicer defines the contract for monthly category budgets.
type BudgetServicer interface {
	CreateBudget(userID, category string, limit decimal.Decimal) (*models.Budget, error)
	ListBudgets(userID string) ([]models.Budget, error)
	DeleteBudget(userID, budgetID string) error
}

// DashboardServicer builds the derived dashboard for a user.
type DashboardServicer interface {
	GetDashboard(userID string, loc *time.Location) (*metrics.Dashboard, error)
}

// ImportFailure describes one CSV row that could not be imported.
type ImportFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarises a CSV import. Imported rows are kept even when
// other rows fail.
type ImportResult struct {
	Imported int             `json:"imported"`
	Failed   []ImportFailure `json:"failed"`
}

// TransferServicer handles bulk import and export of transactions.
type TransferServicer interface {
	ExportCSV(userID string, w io.Writer) error
	ExportXLSX(userID string, w io.Writer) error
	ImportCSV(userID string, r io.Reader) (*ImportResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
