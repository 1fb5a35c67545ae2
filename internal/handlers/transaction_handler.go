package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	now                func() time.Time
	location           *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. now and location
// decide which calendar day an undated transaction lands on; nil means
// time.Now and UTC.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer, now func() time.Time, location *time.Location) *TransactionHandler {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
		now:                now,
		location:           location,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Tag may be a string or an array of strings; only the first element of an
// array is kept. An omitted date defaults to today.
type CreateTransactionRequest struct {
	Type   models.TransactionType `json:"type" binding:"required,transaction_type"`
	Name   string                 `json:"name" binding:"max=200"`
	Tag    Tag                    `json:"tag" swaggertype:"string"`
	Amount decimal.Decimal        `json:"amount" binding:"gte=0" swaggertype:"number"`
	Date   string                 `json:"date" example:"2025-01-15"`
	GoalID *string                `json:"goal_id" binding:"omitempty,uuid"`
}

// DeleteTransactionsRequest lists the transactions to delete.
type DeleteTransactionsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

// CountResponse reports how many records an operation affected.
type CountResponse struct {
	Deleted int64 `json:"deleted"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create an income, expense or goal transaction. Goal transactions require goal_id.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseDate(req.Date, services.Today(h.now().In(h.location)))
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.CreateTransactionInput{
		Type:   req.Type,
		Name:   strings.TrimSpace(req.Name),
		Tag:    strings.TrimSpace(string(req.Tag)),
		Amount: req.Amount,
		Date:   date,
		GoalID: req.GoalID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreate, services.ResourceTransaction, transaction.ID, c.ClientIP(),
		map[string]any{"type": transaction.Type, "amount": transaction.Amount.String(), "tag": transaction.Tag})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// SearchTransactions handles the transaction table
// @Summary     Search transactions
// @Description Get a paginated, filtered and sorted list of the user's transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       q         query string false "Case-insensitive name search"
// @Param       type      query string false "Filter by type (income, expense, goal)"
// @Param       sort      query string false "Sort by date or amount (descending)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) SearchTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.SearchTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	filter := services.TransactionFilter{Query: strings.TrimSpace(c.Query("q"))}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(strings.ToLower(v))
		if !txType.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income, expense, or goal")
		}
		filter.Type = &txType
	}

	switch v := c.Query("sort"); v {
	case "", "date", "amount":
		filter.SortBy = v
	default:
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid sort, must be date or amount")
	}

	return filter, nil
}

// DeleteTransactions handles bulk deletion of selected transactions
// @Summary     Delete transactions
// @Description Delete the listed transactions of the authenticated user
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DeleteTransactionsRequest true "Transaction IDs"
// @Success     200 {object} CountResponse "Number of deleted transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/delete [post]
func (h *TransactionHandler) DeleteTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DeleteTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	deleted, err := h.transactionService.DeleteTransactions(userID, req.IDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDelete, services.ResourceTransaction, "", c.ClientIP(),
		map[string]any{"ids": req.IDs, "deleted": deleted})

	c.JSON(http.StatusOK, CountResponse{Deleted: deleted})
}

// ResetTransactions handles deleting every transaction of the user
// @Summary     Reset transactions
// @Description Delete all transactions of the authenticated user. Goals and budgets are kept.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CountResponse "Number of deleted transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [delete]
func (h *TransactionHandler) ResetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.transactionService.ResetTransactions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditReset, services.ResourceTransaction, "", c.ClientIP(),
		map[string]any{"deleted": deleted})

	c.JSON(http.StatusOK, CountResponse{Deleted: deleted})
}
