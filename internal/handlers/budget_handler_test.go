package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn func(userID, category string, limit decimal.Decimal) (*models.Budget, error)
	listBudgetsFn  func(userID string) ([]models.Budget, error)
	deleteBudgetFn func(userID, budgetID string) error
}

func (m *mockBudgetService) CreateBudget(userID, category string, limit decimal.Decimal) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, category, limit)
	}
	return &models.Budget{Base: models.Base{ID: "budget-1"}, UserID: userID, Category: category, Limit: limit}, nil
}

func (m *mockBudgetService) ListBudgets(userID string) ([]models.Budget, error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(userID)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, audit))

		rec := doRequest(r, "POST", "/budgets", `{"category":"food","limit":10000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]any)
		if budget["category"] != "food" || budget["limit"] != "10000" {
			t.Errorf("unexpected budget payload: %v", budget)
		}
		if entry := audit.last(t); entry.resourceType != services.ResourceBudget {
			t.Errorf("unexpected audit entry: %+v", entry)
		}
	})

	badRequests := []struct {
		name string
		body string
	}{
		{"missing category", `{"limit":100}`},
		{"invalid category", `{"category":"!!","limit":100}`},
		{"zero limit", `{"category":"food","limit":0}`},
		{"negative limit", `{"category":"food","limit":"-3"}`},
	}
	for _, tt := range badRequests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/budgets", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 409 on duplicate category", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(string, string, decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrBudgetExists
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets", `{"category":"food","limit":100}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_EXISTS")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		r := gin.New()
		r.POST("/budgets", NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}).CreateBudget)

		rec := doRequest(r, "POST", "/budgets", `{"category":"food","limit":100}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	svc := &mockBudgetService{
		listBudgetsFn: func(string) ([]models.Budget, error) {
			return models.DefaultBudgets(), nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/budgets", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	budgets := parseJSON(t, rec)["budgets"].([]any)
	if len(budgets) != 3 {
		t.Fatalf("expected 3 budgets, got %d", len(budgets))
	}
	if first := budgets[0].(map[string]any); first["category"] != "food" {
		t.Errorf("expected creation order, got %v first", first["category"])
	}
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotID string
		svc := &mockBudgetService{
			deleteBudgetFn: func(_, budgetID string) error {
				gotID = budgetID
				return nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budgets/budget-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotID != "budget-1" {
			t.Errorf("expected budget-1, got %q", gotID)
		}
	})

	t.Run("returns 404 on unknown budget", func(t *testing.T) {
		svc := &mockBudgetService{
			deleteBudgetFn: func(string, string) error { return apperrors.ErrBudgetNotFound },
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budgets/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}
