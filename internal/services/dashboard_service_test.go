package services

import (
	"errors"
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func newDashboardService(t *testing.T, now time.Time) (DashboardServicer, GoalServicer, TransactionServicer, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	txSvc := NewTransactionService(db)
	goalSvc := NewGoalService(db, txSvc, fixedClock(now))
	svc := NewDashboardService(txSvc, goalSvc, NewBudgetService(db), fixedClock(now))
	return svc, goalSvc, txSvc, func() { testutil.TeardownTestDB(t, db) }
}

func TestGetDashboard_scenario(t *testing.T) {
	now := time.Date(2024, 1, 25, 12, 0, 0, 0, time.UTC)
	svc, goalSvc, txSvc, teardown := newDashboardService(t, now)
	defer teardown()
	db := goalSvc.(*goalService).db

	user := testutil.CreateTestUser(t, db)
	goa := testutil.CreateTestGoalWithName(t, db, user.ID, "Goa Trip", 40000)
	testutil.CreateTestBudget(t, db, user.ID, "food", 10000)
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "Salary", "salary", 50000, testutil.Date(2024, 1, 5))
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "Groceries", "food", 12000, testutil.Date(2024, 1, 10))
	testutil.CreateTestContribution(t, db, goa, 5000, testutil.Date(2024, 1, 15))

	dash, err := svc.GetDashboard(user.ID, time.UTC)
	testutil.AssertNoError(t, err)

	testutil.AssertAmount(t, "balance", dash.Balance, "33000")
	if len(dash.Goals) != 1 || dash.Goals[0].Saved.IntPart() != 5000 {
		t.Errorf("expected Goa Trip saved 5000, got %+v", dash.Goals)
	}
	if len(dash.Categories) != 1 || dash.Categories[0].Category != "food" || dash.Categories[0].Total.IntPart() != 12000 {
		t.Errorf("unexpected categories %+v", dash.Categories)
	}
	if len(dash.Budgets) != 1 || !dash.Budgets[0].Over || dash.Budgets[0].Percent != 100 {
		t.Errorf("expected food budget over limit, got %+v", dash.Budgets)
	}
	if len(dash.MonthlySeries) != 12 || dash.MonthlySeries[11].Month != "Jan 24" {
		t.Errorf("unexpected monthly series %+v", dash.MonthlySeries)
	}
	if !dash.AsOf.Equal(now) {
		t.Errorf("expected dashboard as of %s, got %s", now, dash.AsOf)
	}

	// deleting the goal returns its contribution to the balance
	_, err = goalSvc.DeleteGoal(user.ID, goa.ID)
	testutil.AssertNoError(t, err)
	dash, err = svc.GetDashboard(user.ID, time.UTC)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, "balance after goal delete", dash.Balance, "38000")
	if len(dash.Goals) != 0 {
		t.Errorf("expected no goals, got %d", len(dash.Goals))
	}

	// reset empties every view
	_, err = txSvc.ResetTransactions(user.ID)
	testutil.AssertNoError(t, err)
	dash, err = svc.GetDashboard(user.ID, time.UTC)
	testutil.AssertNoError(t, err)
	if !dash.Balance.IsZero() || len(dash.Categories) != 0 || len(dash.RecentRows) != 0 {
		t.Errorf("expected empty dashboard after reset, got balance %s, %d categories, %d rows",
			dash.Balance, len(dash.Categories), len(dash.RecentRows))
	}
}

func TestGetDashboard_timezone(t *testing.T) {
	// 31 Jan 20:00 UTC is 1 Feb in Kolkata.
	now := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
	svc, goalSvc, _, teardown := newDashboardService(t, now)
	defer teardown()
	db := goalSvc.(*goalService).db
	user := testutil.CreateTestUser(t, db)

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	utc, err := svc.GetDashboard(user.ID, time.UTC)
	testutil.AssertNoError(t, err)
	ist, err := svc.GetDashboard(user.ID, kolkata)
	testutil.AssertNoError(t, err)

	if utc.MonthlySeries[11].Month != "Jan 24" {
		t.Errorf("expected UTC current month Jan 24, got %s", utc.MonthlySeries[11].Month)
	}
	if ist.MonthlySeries[11].Month != "Feb 24" {
		t.Errorf("expected Kolkata current month Feb 24, got %s", ist.MonthlySeries[11].Month)
	}
}

type countingTransactionService struct {
	TransactionServicer
	lists int
}

func (c *countingTransactionService) ListTransactions(userID string) ([]models.Transaction, error) {
	c.lists++
	return c.TransactionServicer.ListTransactions(userID)
}

func TestGetDashboard_loads_transactions_once(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	now := time.Date(2024, 1, 25, 12, 0, 0, 0, time.UTC)

	counter := &countingTransactionService{TransactionServicer: NewTransactionService(db)}
	goalSvc := NewGoalService(db, counter, fixedClock(now))
	svc := NewDashboardService(counter, goalSvc, NewBudgetService(db), fixedClock(now))

	user := testutil.CreateTestUser(t, db)
	goa := testutil.CreateTestGoalWithName(t, db, user.ID, "Goa Trip", 40000)
	testutil.CreateTestContribution(t, db, goa, 5000, testutil.Date(2024, 1, 15))

	dash, err := svc.GetDashboard(user.ID, time.UTC)
	testutil.AssertNoError(t, err)

	if counter.lists != 1 {
		t.Errorf("expected one transaction load per dashboard, got %d", counter.lists)
	}
	if len(dash.Goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(dash.Goals))
	}
	testutil.AssertAmount(t, "saved", dash.Goals[0].Saved, "5000")
}

type failingTransactionService struct {
	TransactionServicer
}

func (failingTransactionService) ListTransactions(string) ([]models.Transaction, error) {
	return nil, errors.New("store unavailable")
}

func TestGetDashboard_store_error(t *testing.T) {
	svc := NewDashboardService(failingTransactionService{}, nil, nil, nil)

	if _, err := svc.GetDashboard("user", nil); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
