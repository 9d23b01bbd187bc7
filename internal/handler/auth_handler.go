package handler

import (
	"net/http"

	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AuthCallbackResponse represents the response from the auth callback
type AuthCallbackResponse struct {
	User      ProfileResponse `json:"user"`
	IsNewUser bool            `json:"isNewUser"`
}

// Callback handles POST /api/auth/callback. The frontend calls this after
// receiving the Auth0 token; it provisions the local user row on first
// contact.
func (h *AuthHandler) Callback(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		log.Error().Msg("No Auth0 ID in context - middleware may not be configured")
		return NewUnauthorizedError(c, "Authentication required")
	}

	customClaims := middleware.GetCustomClaims(c)
	var email, name string
	if customClaims != nil {
		email = customClaims.Email
		name = customClaims.Name
	}

	if email == "" {
		log.Error().Str("auth0_id", auth0ID).Msg("No email in JWT claims")
		return NewValidationError(c, "Email is required for authentication", []ValidationError{
			{Field: "email", Message: "Email claim is missing from token"},
		})
	}

	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	isNewUser := middleware.GetUserID(c) == uuid.Nil
	user, err := h.authService.EnsureUser(c.Request().Context(), auth0ID, email, namePtr)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to provision user")
		return NewInternalError(c, "Failed to authenticate user")
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:      toProfileResponse(user),
		IsNewUser: isNewUser,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUserByAuth0ID(c.Request().Context(), auth0ID)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to get user")
		return NewNotFoundError(c, "User not found")
	}

	return c.JSON(http.StatusOK, toProfileResponse(user))
}
