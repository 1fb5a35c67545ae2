package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// DashboardHandler serves the derived dashboard.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	defaultLocation  *time.Location
}

// NewDashboardHandler creates a new DashboardHandler. defaultLocation is used
// when the request has no tz parameter.
func NewDashboardHandler(dashboardService services.DashboardServicer, defaultLocation *time.Location) *DashboardHandler {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &DashboardHandler{dashboardService: dashboardService, defaultLocation: defaultLocation}
}

// GetDashboard returns every dashboard view computed from the user's data.
// @Summary     Get dashboard
// @Description Balance, KPIs, monthly series, category totals, goal progress, budget utilization, insights and recent transactions
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       tz query string false "IANA timezone used for month boundaries (e.g. Asia/Kolkata)"
// @Success     200 {object} metrics.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid timezone"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loc := h.defaultLocation
	if tz := c.Query("tz"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid tz, use an IANA timezone name"))
			return
		}
	}

	dashboard, err := h.dashboardService.GetDashboard(userID, loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
