package handler

import (
	"net/http"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// MonthlySavingsResponse is one bucket of the trailing savings series
type MonthlySavingsResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Saved string `json:"saved"`
}

// DashboardSummaryResponse represents the dashboard summary in API responses
type DashboardSummaryResponse struct {
	TotalIncome    string                   `json:"totalIncome"`
	TotalSaved     string                   `json:"totalSaved"`
	TotalExpenses  string                   `json:"totalExpenses"`
	TotalAllocated string                   `json:"totalAllocated"`
	MonthIncome    string                   `json:"monthIncome"`
	MonthSaved     string                   `json:"monthSaved"`
	MonthLabel     string                   `json:"monthLabel"`
	Growth         []MonthlySavingsResponse `json:"growth"`
}

func toDashboardResponse(summary *domain.DashboardSummary) DashboardSummaryResponse {
	growth := make([]MonthlySavingsResponse, 0, len(summary.Growth))
	for _, bucket := range summary.Growth {
		growth = append(growth, MonthlySavingsResponse{
			Key:   bucket.Key,
			Label: bucket.Label,
			Saved: bucket.Saved.StringFixed(2),
		})
	}
	return DashboardSummaryResponse{
		TotalIncome:    summary.TotalIncome.StringFixed(2),
		TotalSaved:     summary.TotalSaved.StringFixed(2),
		TotalExpenses:  summary.TotalExpenses.StringFixed(2),
		TotalAllocated: summary.TotalAllocated.StringFixed(2),
		MonthIncome:    summary.MonthIncome.StringFixed(2),
		MonthSaved:     summary.MonthSaved.StringFixed(2),
		MonthLabel:     summary.MonthLabel,
		Growth:         growth,
	}
}

// GetSummary handles GET /api/dashboard/summary
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.dashboardService.GetSummary(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to build dashboard summary")
		return NewInternalError(c, "Failed to build dashboard summary")
	}

	return c.JSON(http.StatusOK, toDashboardResponse(summary))
}
