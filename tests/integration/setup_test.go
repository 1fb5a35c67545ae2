package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/testutil"
	"fintrack/internal/validator"
)

// fixedNow is the clock every integration test runs against.
var fixedNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWithLoginLimit(t, 1000)
}

// setupAppWithLoginLimit is setupApp with a custom per-IP login limit.
func setupAppWithLoginLimit(t *testing.T, loginLimit int) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	now := func() time.Time { return fixedNow }

	// Services
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	goalService := services.NewGoalService(db, transactionService, now)
	budgetService := services.NewBudgetService(db)
	dashboardService := services.NewDashboardService(transactionService, goalService, budgetService, now)
	transferService := services.NewTransferService(transactionService, goalService)
	auditService := services.NewAuditService(db)

	// Handlers
	h := handlers.Handlers{
		Auth:         handlers.NewAuthHandler(userService, auditService),
		Transactions: handlers.NewTransactionHandler(transactionService, auditService, now, time.UTC),
		Goals:        handlers.NewGoalHandler(goalService, auditService),
		Budgets:      handlers.NewBudgetHandler(budgetService, auditService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService, time.UTC),
		Transfer:     handlers.NewTransferHandler(transferService, auditService),
	}

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	handlers.RegisterRoutes(router.Group("/api/v1"), h, middleware.LoginRateLimit(loginLimit, time.Minute))

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// upload posts content as the multipart "file" field.
func (app *testApp) upload(t *testing.T, path, content, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode returns the error code of an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"display_name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]any)
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createTransaction posts a transaction and fails the test unless it is created.
func (app *testApp) createTransaction(t *testing.T, token, body string) map[string]any {
	t.Helper()
	rec := app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["transaction"].(map[string]any)
}

// goalID returns the id of the user's goal called name.
func (app *testApp) goalID(t *testing.T, token, name string) string {
	t.Helper()
	for _, g := range app.goals(t, token) {
		if g["name"] == name {
			return g["id"].(string)
		}
	}
	t.Fatalf("goal %q not found", name)
	return ""
}

func (app *testApp) goals(t *testing.T, token string) []map[string]any {
	t.Helper()
	rec := app.request("GET", "/api/v1/goals", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list goals failed: %d %s", rec.Code, rec.Body.String())
	}
	var out []map[string]any
	for _, g := range parseJSON(t, rec)["goals"].([]any) {
		out = append(out, g.(map[string]any))
	}
	return out
}

// dashboard fetches the dashboard.
func (app *testApp) dashboard(t *testing.T, token string) map[string]any {
	t.Helper()
	rec := app.request("GET", "/api/v1/dashboard", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}
