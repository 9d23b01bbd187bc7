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

// BudgetHandler handles budget template HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetResponse represents a budget template entry in API responses
type BudgetResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Percent string `json:"percent"`
}

func toBudgetResponses(budgets []*domain.Budget) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, BudgetResponse{
			ID:      b.ID.String(),
			Name:    b.Name,
			Percent: b.Percent.StringFixed(2),
		})
	}
	return out
}

// ListBudgets handles GET /api/budgets
func (h *BudgetHandler) ListBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.ListBudgets(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list budgets")
		return NewInternalError(c, "Failed to list budgets")
	}

	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}
