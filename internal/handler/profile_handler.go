package handler

import (
	"errors"
	"net/http"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile, onboarding and settings HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileResponse represents a user profile in API responses
type ProfileResponse struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Name              *string `json:"name"`
	ImageKey          *string `json:"imageKey"`
	PreferredCurrency string  `json:"preferredCurrency"`
	ConversionRate    string  `json:"conversionRate"`
	Onboarded         bool    `json:"onboarded"`
}

func toProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:                user.ID.String(),
		Email:             user.Email,
		Name:              user.Name,
		ImageKey:          user.ImageKey,
		PreferredCurrency: string(user.PreferredCurrency),
		ConversionRate:    user.ConversionRate.String(),
		Onboarded:         user.Onboarded,
	}
}

// budgetValidationDetail maps budget validation failures to field errors
func budgetValidationDetail(err error) ([]ValidationError, bool) {
	switch {
	case errors.Is(err, domain.ErrBudgetRequired):
		return []ValidationError{{Field: "budgets", Message: domain.ErrBudgetRequired.Error()}}, true
	case errors.Is(err, domain.ErrSavingsBudgetRequired):
		return []ValidationError{{Field: "budgets", Message: domain.ErrSavingsBudgetRequired.Error()}}, true
	case errors.Is(err, domain.ErrAllocationOverflow):
		return []ValidationError{{Field: "budgets", Message: domain.ErrAllocationOverflow.Error()}}, true
	case errors.Is(err, domain.ErrInvalidConversionRate):
		return []ValidationError{{Field: "conversionRate", Message: domain.ErrInvalidConversionRate.Error()}}, true
	}
	return nil, false
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.profileService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get profile")
		return NewInternalError(c, "Failed to get profile")
	}

	return c.JSON(http.StatusOK, toProfileResponse(user))
}

// Onboard handles POST /api/onboarding
func (h *ProfileHandler) Onboard(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req service.OnboardingInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.profileService.Onboard(c.Request().Context(), userID, req); err != nil {
		if fields, ok := budgetValidationDetail(err); ok {
			return NewValidationError(c, "Validation failed", fields)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to complete onboarding")
		return NewInternalError(c, "Failed to complete onboarding")
	}

	user, err := h.profileService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to reload profile after onboarding")
		return NewInternalError(c, "Failed to complete onboarding")
	}

	return c.JSON(http.StatusOK, toProfileResponse(user))
}

// UpdateSettings handles PUT /api/settings
func (h *ProfileHandler) UpdateSettings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req service.SettingsInput
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.profileService.UpdateSettings(c.Request().Context(), userID, req)
	if err != nil {
		if fields, ok := budgetValidationDetail(err); ok {
			return NewValidationError(c, "Validation failed", fields)
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to update settings")
		return NewInternalError(c, "Failed to update settings")
	}

	return c.JSON(http.StatusOK, toProfileResponse(user))
}
