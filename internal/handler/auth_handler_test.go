package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/accrue-app/accrue-backend/internal/testutil"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Helper to set up auth context
func setupAuthContext(c echo.Context, auth0ID, email, name string) {
	setupAuthContextWithUser(c, auth0ID, email, name, uuid.Nil)
}

// Helper to set up auth context with a resolved local user
func setupAuthContextWithUser(c echo.Context, auth0ID, email, name string, userID uuid.UUID) {
	customClaims := &middleware.CustomClaims{
		Email: email,
		Name:  name,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	if userID != uuid.Nil {
		ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestCallback_NewUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|newuser123", "new@example.com", "New User")

	err := handler.Callback(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if !response.IsNewUser {
		t.Error("Expected isNewUser true for first contact")
	}
	if response.User.Email != "new@example.com" {
		t.Errorf("Expected email 'new@example.com', got %s", response.User.Email)
	}
	if response.User.Onboarded {
		t.Error("Expected fresh user to start not onboarded")
	}
}

func TestCallback_ExistingUser(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	existing := &domain.User{
		ID:      uuid.New(),
		Auth0ID: "auth0|known",
		Email:   "known@example.com",
	}
	userRepo.AddUser(existing)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContextWithUser(c, "auth0|known", "known@example.com", "", existing.ID)

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response AuthCallbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.IsNewUser {
		t.Error("Expected isNewUser false for a known user")
	}
	if response.User.ID != existing.ID.String() {
		t.Errorf("Expected existing user ID, got %s", response.User.ID)
	}
}

func TestCallback_RequiresEmailClaim(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupAuthContext(c, "auth0|noemail", "", "")

	if err := handler.Callback(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestMe_Unauthorized(t *testing.T) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Me(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
