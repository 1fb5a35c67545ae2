package handlers

import (
	"github.com/gin-gonic/gin"

	"fintrack/internal/middleware"
)

// Handlers groups every API handler for route registration.
type Handlers struct {
	Auth         *AuthHandler
	Transactions *TransactionHandler
	Goals        *GoalHandler
	Budgets      *BudgetHandler
	Dashboard    *DashboardHandler
	Transfer     *TransferHandler
}

// RegisterRoutes mounts the API under v1. loginLimit, when non-nil, guards
// the login endpoint.
func RegisterRoutes(v1 *gin.RouterGroup, h Handlers, loginLimit gin.HandlerFunc) {
	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	if loginLimit != nil {
		auth.POST("/login", loginLimit, h.Auth.Login)
	} else {
		auth.POST("/login", h.Auth.Login)
	}
	auth.POST("/refresh", h.Auth.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", h.Auth.GetProfile)

	transactions := protected.Group("/transactions")
	transactions.GET("", h.Transactions.SearchTransactions)
	transactions.POST("", h.Transactions.CreateTransaction)
	transactions.POST("/delete", h.Transactions.DeleteTransactions)
	transactions.DELETE("", h.Transactions.ResetTransactions)
	transactions.GET("/export", h.Transfer.ExportTransactions)
	transactions.POST("/import", h.Transfer.ImportTransactions)

	goals := protected.Group("/goals")
	goals.GET("", h.Goals.GetGoals)
	goals.POST("", h.Goals.CreateGoal)
	goals.DELETE("/:id", h.Goals.DeleteGoal)
	goals.POST("/:id/contributions", h.Goals.Contribute)

	budgets := protected.Group("/budgets")
	budgets.GET("", h.Budgets.GetBudgets)
	budgets.POST("", h.Budgets.CreateBudget)
	budgets.DELETE("/:id", h.Budgets.DeleteBudget)

	protected.GET("/dashboard", h.Dashboard.GetDashboard)
}
