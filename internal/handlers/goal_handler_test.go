package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// --- mock goal service ---

type mockGoalService struct {
	createGoalFn    func(userID, name string, target decimal.Decimal) (*models.SavingsGoal, error)
	listGoalsFn     func(userID string) ([]models.SavingsGoal, error)
	listDefsFn      func(userID string) ([]models.SavingsGoal, error)
	getGoalByIDFn   func(userID, goalID string) (*models.SavingsGoal, error)
	getGoalByNameFn func(userID, name string) (*models.SavingsGoal, error)
	contributeFn    func(userID, goalID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error)
	deleteGoalFn    func(userID, goalID string) (int64, error)
}

func (m *mockGoalService) CreateGoal(userID, name string, target decimal.Decimal) (*models.SavingsGoal, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, name, target)
	}
	return &models.SavingsGoal{Base: models.Base{ID: testGoalID}, UserID: userID, Name: name, Target: target}, nil
}

func (m *mockGoalService) ListGoals(userID string) ([]models.SavingsGoal, error) {
	if m.listGoalsFn != nil {
		return m.listGoalsFn(userID)
	}
	return []models.SavingsGoal{}, nil
}

func (m *mockGoalService) ListGoalDefinitions(userID string) ([]models.SavingsGoal, error) {
	if m.listDefsFn != nil {
		return m.listDefsFn(userID)
	}
	return []models.SavingsGoal{}, nil
}

func (m *mockGoalService) GetGoalByID(userID, goalID string) (*models.SavingsGoal, error) {
	if m.getGoalByIDFn != nil {
		return m.getGoalByIDFn(userID, goalID)
	}
	return &models.SavingsGoal{Base: models.Base{ID: goalID}}, nil
}

func (m *mockGoalService) GetGoalByName(userID, name string) (*models.SavingsGoal, error) {
	if m.getGoalByNameFn != nil {
		return m.getGoalByNameFn(userID, name)
	}
	return &models.SavingsGoal{Name: name}, nil
}

func (m *mockGoalService) Contribute(userID, goalID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error) {
	if m.contributeFn != nil {
		return m.contributeFn(userID, goalID, amount, date)
	}
	return &models.Transaction{Base: models.Base{ID: "tx-1"}, GoalID: &goalID, Amount: amount}, nil
}

func (m *mockGoalService) DeleteGoal(userID, goalID string) (int64, error) {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(userID, goalID)
	}
	return 0, nil
}

var _ services.GoalServicer = (*mockGoalService)(nil)

func setupGoalRouter(handler *GoalHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/goals", handler.GetGoals)
	auth.POST("/goals", handler.CreateGoal)
	auth.DELETE("/goals/:id", handler.DeleteGoal)
	auth.POST("/goals/:id/contributions", handler.Contribute)
	return r
}

func TestGoalHandler_GetGoals(t *testing.T) {
	svc := &mockGoalService{
		listGoalsFn: func(string) ([]models.SavingsGoal, error) {
			return []models.SavingsGoal{
				{Name: "Goa Trip", Target: decimal.NewFromInt(40000), Saved: decimal.NewFromInt(5000)},
			}, nil
		},
	}
	r := setupGoalRouter(NewGoalHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/goals", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	goals := parseJSON(t, rec)["goals"].([]any)
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	goal := goals[0].(map[string]any)
	if goal["name"] != "Goa Trip" || goal["saved"] != "5000" {
		t.Errorf("unexpected goal payload: %v", goal)
	}
}

func TestGoalHandler_CreateGoal(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupGoalRouter(NewGoalHandler(&mockGoalService{}, audit))

		rec := doRequest(r, "POST", "/goals", `{"name":"  New Bike ","target":25000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		goal := parseJSON(t, rec)["goal"].(map[string]any)
		if goal["name"] != "New Bike" {
			t.Errorf("expected trimmed name, got %v", goal["name"])
		}
		if entry := audit.last(t); entry.resourceType != services.ResourceGoal || entry.resourceID != testGoalID {
			t.Errorf("unexpected audit entry: %+v", entry)
		}
	})

	for _, body := range []string{`{"target":100}`, `{"name":"Bike","target":0}`, `{"name":"Bike","target":-1}`} {
		t.Run("returns 400 on "+body, func(t *testing.T) {
			r := setupGoalRouter(NewGoalHandler(&mockGoalService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/goals", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		svc := &mockGoalService{
			createGoalFn: func(string, string, decimal.Decimal) (*models.SavingsGoal, error) {
				return nil, apperrors.ErrGoalNameTaken
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/goals", `{"name":"Goa Trip","target":100}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NAME_TAKEN")
	})
}

func TestGoalHandler_Contribute(t *testing.T) {
	t.Run("passes goal id, amount and date", func(t *testing.T) {
		var gotGoal string
		var gotAmount decimal.Decimal
		var gotDate time.Time
		svc := &mockGoalService{
			contributeFn: func(_, goalID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error) {
				gotGoal, gotAmount, gotDate = goalID, amount, date
				return &models.Transaction{Base: models.Base{ID: "tx-9"}}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupGoalRouter(NewGoalHandler(svc, audit))

		rec := doRequest(r, "POST", "/goals/"+testGoalID+"/contributions", `{"amount":5000,"date":"2025-02-01"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotGoal != testGoalID || !gotAmount.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("unexpected contribution: %s %s", gotGoal, gotAmount)
		}
		if want := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC); !gotDate.Equal(want) {
			t.Errorf("expected %v, got %v", want, gotDate)
		}
		if entry := audit.last(t); entry.action != services.AuditContribute {
			t.Errorf("expected contribute audit, got %+v", entry)
		}
	})

	t.Run("leaves date zero when omitted", func(t *testing.T) {
		var gotDate time.Time
		svc := &mockGoalService{
			contributeFn: func(_, _ string, _ decimal.Decimal, date time.Time) (*models.Transaction, error) {
				gotDate = date
				return &models.Transaction{}, nil
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/goals/"+testGoalID+"/contributions", `{"amount":10}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if !gotDate.IsZero() {
			t.Errorf("expected zero date, got %v", gotDate)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupGoalRouter(NewGoalHandler(&mockGoalService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/goals/"+testGoalID+"/contributions", `{"amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 on unknown goal", func(t *testing.T) {
		svc := &mockGoalService{
			contributeFn: func(string, string, decimal.Decimal, time.Time) (*models.Transaction, error) {
				return nil, apperrors.ErrGoalNotFound
			},
		}
		r := setupGoalRouter(NewGoalHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/goals/missing/contributions", `{"amount":10}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestGoalHandler_DeleteGoal(t *testing.T) {
	t.Run("returns removed transaction count", func(t *testing.T) {
		svc := &mockGoalService{
			deleteGoalFn: func(_, goalID string) (int64, error) {
				if goalID != testGoalID {
					t.Errorf("unexpected goal id %q", goalID)
				}
				return 3, nil
			},
		}
		audit := &mockAuditService{}
		r := setupGoalRouter(NewGoalHandler(svc, audit))

		rec := doRequest(r, "DELETE", "/goals/"+testGoalID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["deleted_transactions"].(float64) != 3 {
			t.Error("expected deleted_transactions=3")
		}
		if entry := audit.last(t); entry.action != services.AuditDelete || entry.resourceID != testGoalID {
			t.Errorf("unexpected audit entry: %+v", entry)
		}
	})

	t.Run("returns 404 on unknown goal", func(t *testing.T) {
		svc := &mockGoalService{
			deleteGoalFn: func(string, string) (int64, error) { return 0, apperrors.ErrGoalNotFound },
		}
		r := setupGoalRouter(NewGoalHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/goals/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}
