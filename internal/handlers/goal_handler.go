package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// GoalHandler handles savings goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for creating a goal.
type CreateGoalRequest struct {
	Name   string          `json:"name" binding:"required,min=1,max=100"`
	Target decimal.Decimal `json:"target" binding:"gt=0" swaggertype:"number"`
}

// ContributeRequest represents a contribution to a goal. An omitted date
// defaults to today.
type ContributeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0" swaggertype:"number"`
	Date   string          `json:"date" example:"2025-01-15"`
}

// DeleteGoalResponse reports the transactions removed with the goal.
type DeleteGoalResponse struct {
	DeletedTransactions int64 `json:"deleted_transactions"`
}

// GetGoals lists the user's goals with their saved amounts.
// @Summary     List goals
// @Description List savings goals with the amount saved so far
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.SavingsGoal "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.ListGoals(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// CreateGoal handles the creation of a new goal.
// @Summary     Create a goal
// @Description Create a named savings goal with a target amount
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.SavingsGoal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Goal name taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.CreateGoal(userID, strings.TrimSpace(req.Name), req.Target)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, services.ResourceGoal, goal.ID, c.ClientIP(),
		map[string]any{"name": goal.Name, "target": goal.Target.String()})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// Contribute records a contribution to a goal.
// @Summary     Contribute to a goal
// @Description Add a goal transaction linked to the goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body ContributeRequest true "Contribution"
// @Success     201 {object} models.Transaction "Contribution recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// A zero date lets the service apply its own clock.
	date, err := parseDate(req.Date, time.Time{})
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID := c.Param("id")
	transaction, err := h.goalService.Contribute(userID, goalID, req.Amount, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditContribute, services.ResourceGoal, goalID, c.ClientIP(),
		map[string]any{"amount": req.Amount.String(), "transaction_id": transaction.ID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// DeleteGoal deletes a goal and every transaction linked to it.
// @Summary     Delete a goal
// @Description Delete a goal together with its contributions
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} DeleteGoalResponse "Goal deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID := c.Param("id")
	deleted, err := h.goalService.DeleteGoal(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, services.ResourceGoal, goalID, c.ClientIP(),
		map[string]any{"deleted_transactions": deleted})

	c.JSON(http.StatusOK, DeleteGoalResponse{DeletedTransactions: deleted})
}
