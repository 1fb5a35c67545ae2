package services

import (
	"time"

	"fintrack/internal/metrics"
)

// dashboardService loads a full snapshot and hands it to the metrics engine.
type dashboardService struct {
	transactionService TransactionServicer
	goalService        GoalServicer
	budgetService      BudgetServicer
	now                func() time.Time
}

// NewDashboardService creates a new DashboardServicer. now is the clock
// passed to the engine; nil means time.Now.
func NewDashboardService(transactionService TransactionServicer, goalService GoalServicer, budgetService BudgetServicer, now func() time.Time) DashboardServicer {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{
		transactionService: transactionService,
		goalService:        goalService,
		budgetService:      budgetService,
		now:                now,
	}
}

// GetDashboard computes the dashboard as seen from loc. Store errors are
// returned as is; malformed data never fails the request.
func (s *dashboardService) GetDashboard(userID string, loc *time.Location) (*metrics.Dashboard, error) {
	if loc == nil {
		loc = time.UTC
	}

	transactions, err := s.transactionService.ListTransactions(userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.goalService.ListGoalDefinitions(userID)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetService.ListBudgets(userID)
	if err != nil {
		return nil, err
	}

	state := metrics.DashboardState{
		Transactions: transactions,
		Goals:        goals,
		Budgets:      budgets,
	}
	return metrics.Compute(state, s.now().In(loc)), nil
}
