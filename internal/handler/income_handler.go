package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IncomeHandler handles income-related HTTP requests
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// AllocationResponse represents an allocation split in API responses
type AllocationResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Percent     string  `json:"percent"`
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
}

// IncomeResponse represents an income event in API responses. Monetary
// fields are fixed to two decimal places at this boundary only; internal
// math runs on the exact values.
type IncomeResponse struct {
	ID             string               `json:"id"`
	Amount         string               `json:"amount"`
	AmountOriginal string               `json:"amountOriginal"`
	Currency       string               `json:"currency"`
	Date           string               `json:"date"`
	Saved          string               `json:"saved"`
	Allocations    []AllocationResponse `json:"allocations"`
	CreatedAt      string               `json:"createdAt"`
	UpdatedAt      string               `json:"updatedAt"`
}

// IncomePageResponse represents one page of the income list
type IncomePageResponse struct {
	Entries    []IncomeResponse `json:"entries"`
	NextCursor *string          `json:"nextCursor"`
}

func toIncomeResponse(income *domain.Income) IncomeResponse {
	allocations := make([]AllocationResponse, 0, len(income.Allocations))
	for _, a := range income.Allocations {
		allocations = append(allocations, AllocationResponse{
			ID:          a.ID.String(),
			Name:        a.Name,
			Percent:     a.Percent.StringFixed(2),
			Amount:      a.Amount.StringFixed(2),
			Description: a.Description,
		})
	}
	return IncomeResponse{
		ID:             income.ID.String(),
		Amount:         income.Amount.StringFixed(2),
		AmountOriginal: income.AmountOriginal.StringFixed(2),
		Currency:       string(income.Currency),
		Date:           income.Date.Format("2006-01-02"),
		Saved:          income.SavedAmount().StringFixed(2),
		Allocations:    allocations,
		CreatedAt:      income.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      income.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// incomeValidationDetail maps a domain validation failure to a field-level
// error, or returns false when the error is not a validation failure
func incomeValidationDetail(err error) ([]ValidationError, bool) {
	switch {
	case errors.Is(err, domain.ErrAmountNotPositive):
		return []ValidationError{{Field: "amount", Message: domain.ErrAmountNotPositive.Error()}}, true
	case errors.Is(err, domain.ErrInvalidDate):
		return []ValidationError{{Field: "date", Message: "Must be a valid date"}}, true
	case errors.Is(err, domain.ErrAllocationOverflow):
		return []ValidationError{{Field: "allocations", Message: domain.ErrAllocationOverflow.Error()}}, true
	case errors.Is(err, domain.ErrInvalidConversionRate):
		return []ValidationError{{Field: "conversionRate", Message: domain.ErrInvalidConversionRate.Error()}}, true
	}
	return nil, false
}

// CreateIncome handles POST /api/income
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req service.CreateIncomeInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	income, err := h.incomeService.CreateIncome(c.Request().Context(), userID, req)
	if err != nil {
		if fields, ok := incomeValidationDetail(err); ok {
			return NewValidationError(c, "Validation failed", fields)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create income")
		return NewInternalError(c, "Failed to create income")
	}

	return c.JSON(http.StatusCreated, toIncomeResponse(income))
}

// ListIncomes handles GET /api/income with cursor pagination
func (h *IncomeHandler) ListIncomes(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var cursor *uuid.UUID
	if raw := c.QueryParam("cursor"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Invalid cursor", []ValidationError{
				{Field: "cursor", Message: "Must be a valid UUID"},
			})
		}
		cursor = &parsed
	}

	var pageSize int32
	if raw := c.QueryParam("pageSize"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid page size", []ValidationError{
				{Field: "pageSize", Message: "Must be an integer"},
			})
		}
		pageSize = int32(parsed)
	}

	page, err := h.incomeService.ListIncomes(c.Request().Context(), userID, cursor, pageSize)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			return NewValidationError(c, "Invalid cursor", []ValidationError{
				{Field: "cursor", Message: "Cursor does not reference a known entry"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list incomes")
		return NewInternalError(c, "Failed to list incomes")
	}

	entries := make([]IncomeResponse, 0, len(page.Entries))
	for _, income := range page.Entries {
		entries = append(entries, toIncomeResponse(income))
	}
	var next *string
	if page.NextCursor != nil {
		s := page.NextCursor.String()
		next = &s
	}

	return c.JSON(http.StatusOK, IncomePageResponse{Entries: entries, NextCursor: next})
}

// GetIncome handles GET /api/income/:id
func (h *IncomeHandler) GetIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	income, err := h.incomeService.GetIncome(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		log.Error().Err(err).Str("income_id", id.String()).Msg("Failed to get income")
		return NewInternalError(c, "Failed to get income")
	}

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// UpdateIncome handles PUT /api/income/:id
func (h *IncomeHandler) UpdateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	var req service.UpdateIncomeInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	income, err := h.incomeService.UpdateIncome(c.Request().Context(), userID, id, req)
	if err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		if fields, ok := incomeValidationDetail(err); ok {
			return NewValidationError(c, "Validation failed", fields)
		}
		log.Error().Err(err).Str("income_id", id.String()).Msg("Failed to update income")
		return NewInternalError(c, "Failed to update income")
	}

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// DeleteIncome handles DELETE /api/income/:id
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	if err := h.incomeService.DeleteIncome(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		log.Error().Err(err).Str("income_id", id.String()).Msg("Failed to delete income")
		return NewInternalError(c, "Failed to delete income")
	}

	return c.NoContent(http.StatusNoContent)
}
