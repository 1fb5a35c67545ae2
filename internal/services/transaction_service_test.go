package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			Type:   models.TransactionTypeExpense,
			Name:   "  Groceries ",
			Tag:    "food",
			Amount: decimal.NewFromInt(1200),
			Date:   testutil.Date(2024, 1, 10),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID to be assigned")
		}
		if tx.Name != "Groceries" {
			t.Errorf("expected trimmed name, got %q", tx.Name)
		}
		if tx.GoalID != nil {
			t.Error("expected no goal link on expense")
		}
	})

	t.Run("goal_contribution_uses_goal_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoalWithName(t, db, user.ID, "Goa Trip", 40000)

		tx, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			Type:   models.TransactionTypeGoal,
			Name:   "ignored",
			Tag:    "ignored",
			Amount: decimal.NewFromInt(5000),
			Date:   testutil.Date(2024, 1, 15),
			GoalID: &goal.ID,
		})
		testutil.AssertNoError(t, err)

		if tx.Name != "Contribution to Goa Trip" {
			t.Errorf("expected canonical name, got %q", tx.Name)
		}
		if tx.Tag != models.SavingsGoalTag {
			t.Errorf("expected tag %q, got %q", models.SavingsGoalTag, tx.Tag)
		}
		if tx.GoalID == nil || *tx.GoalID != goal.ID {
			t.Error("expected goal link")
		}
	})

	t.Run("goal_without_goal_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeGoal, Amount: decimal.NewFromInt(1)})
		testutil.AssertAppError(t, err, "GOAL_REQUIRED")
	})

	t.Run("goal_of_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, other.ID, 1000)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeGoal, Amount: decimal.NewFromInt(1), GoalID: &goal.ID})
		testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: "transfer", Amount: decimal.NewFromInt(1)})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(-1)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("zero_goal_contribution", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, 1000)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeGoal, Amount: decimal.Zero, GoalID: &goal.ID})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		// Zero-amount income and expense rows stay allowed.
		_, err = svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeExpense, Amount: decimal.Zero})
		testutil.AssertNoError(t, err)
	})

	t.Run("missing_date_is_kept", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{Type: models.TransactionTypeIncome, Name: "Gift", Amount: decimal.NewFromInt(10)})
		testutil.AssertNoError(t, err)

		list, err := svc.ListTransactions(user.ID)
		testutil.AssertNoError(t, err)
		if len(list) != 1 || list[0].HasDate() {
			t.Errorf("expected one undated transaction, got %+v", list)
		}
	})
}

func TestListTransactions_scoped_to_user(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "Salary", "", 100, testutil.Date(2024, 1, 1))
	testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeIncome, "Salary", "", 100, testutil.Date(2024, 1, 1))

	list, err := svc.ListTransactions(user.ID)
	testutil.AssertNoError(t, err)
	if len(list) != 1 {
		t.Errorf("expected 1 transaction, got %d", len(list))
	}
}

func TestSearchTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "Salary January", "", 50000, testutil.Date(2024, 1, 1))
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "Groceries", "food", 1200, testutil.Date(2024, 1, 20))
	testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "Salary advance fee", "other", 300, testutil.Date(2024, 1, 5))

	expense := models.TransactionTypeExpense

	tests := []struct {
		name     string
		page     pagination.PageRequest
		filter   TransactionFilter
		wantAll  int64
		wantHead string
		wantLen  int
	}{
		{"insertion_order", pagination.PageRequest{}, TransactionFilter{}, 3, "Salary January", 3},
		{"query_case_insensitive", pagination.PageRequest{}, TransactionFilter{Query: "SALARY"}, 2, "Salary January", 2},
		{"type_filter", pagination.PageRequest{}, TransactionFilter{Type: &expense}, 2, "Groceries", 2},
		{"sort_by_date", pagination.PageRequest{}, TransactionFilter{SortBy: "date"}, 3, "Groceries", 3},
		{"sort_by_amount", pagination.PageRequest{}, TransactionFilter{SortBy: "amount"}, 3, "Salary January", 3},
		{"unknown_sort_falls_back", pagination.PageRequest{}, TransactionFilter{SortBy: "name; DROP TABLE"}, 3, "Salary January", 3},
		{"paged", pagination.PageRequest{Page: 2, PageSize: 2}, TransactionFilter{SortBy: "amount"}, 3, "Salary advance fee", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.SearchTransactions(user.ID, tt.page, tt.filter)
			testutil.AssertNoError(t, err)

			if result.TotalItems != tt.wantAll {
				t.Errorf("expected %d total items, got %d", tt.wantAll, result.TotalItems)
			}
			if len(result.Data) != tt.wantLen {
				t.Fatalf("expected %d rows, got %d", tt.wantLen, len(result.Data))
			}
			if result.Data[0].Name != tt.wantHead {
				t.Errorf("expected first row %q, got %q", tt.wantHead, result.Data[0].Name)
			}
		})
	}
}

func TestDeleteTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	a := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "a", "food", 1, testutil.Date(2024, 1, 1))
	b := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "b", "food", 1, testutil.Date(2024, 1, 1))
	keep := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "c", "food", 1, testutil.Date(2024, 1, 1))
	foreign := testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeExpense, "d", "food", 1, testutil.Date(2024, 1, 1))

	n, err := svc.DeleteTransactions(user.ID, []string{a.ID, b.ID, foreign.ID})
	testutil.AssertNoError(t, err)
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	list, _ := svc.ListTransactions(user.ID)
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Errorf("expected only %s to remain, got %+v", keep.ID, list)
	}
	otherList, _ := svc.ListTransactions(other.ID)
	if len(otherList) != 1 {
		t.Error("another user's transaction must not be deleted")
	}

	_, err = svc.DeleteTransactions(user.ID, nil)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestResetTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	for i := 0; i < 3; i++ {
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "x", "", 10, testutil.Date(2024, 1, 1))
	}
	testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeIncome, "x", "", 10, testutil.Date(2024, 1, 1))

	n, err := svc.ResetTransactions(user.ID)
	testutil.AssertNoError(t, err)
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}

	list, _ := svc.ListTransactions(user.ID)
	if len(list) != 0 {
		t.Errorf("expected no transactions after reset, got %d", len(list))
	}
	otherList, _ := svc.ListTransactions(other.ID)
	if len(otherList) != 1 {
		t.Error("reset must not touch other users")
	}
}
