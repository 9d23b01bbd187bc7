package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/service"
	"github.com/accrue-app/accrue-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newProfileFixture() (*ProfileHandler, *testutil.MockUserRepository, *domain.User) {
	userRepo := testutil.NewMockUserRepository()
	profileService := service.NewProfileService(userRepo, nil)

	user := &domain.User{
		ID:                uuid.New(),
		Auth0ID:           "auth0|profile",
		Email:             "p@example.com",
		PreferredCurrency: domain.CurrencyUSD,
		ConversionRate:    decimal.Zero,
	}
	userRepo.AddUser(user)

	return NewProfileHandler(profileService), userRepo, user
}

func TestGetProfile_Success(t *testing.T) {
	e := echo.New()
	handler, _, user := newProfileFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithUser(c, user.Auth0ID, user.Email, "", user.ID)

	if err := handler.GetProfile(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response ProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Email != "p@example.com" {
		t.Errorf("Expected email 'p@example.com', got %s", response.Email)
	}
	if response.Onboarded {
		t.Error("Expected onboarded false")
	}
}

func TestGetProfile_Unauthorized(t *testing.T) {
	e := echo.New()
	handler, _, _ := newProfileFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetProfile(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestOnboard_Handler_Success(t *testing.T) {
	e := echo.New()
	handler, userRepo, user := newProfileFixture()

	body := `{
		"fullName": "Ada Bello",
		"budgets": [
			{"name": "Savings / Investments", "percent": "40"},
			{"name": "Rent", "percent": "35"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithUser(c, user.Auth0ID, user.Email, "", user.ID)

	if err := handler.Onboard(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response ProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Onboarded {
		t.Error("Expected onboarded true after onboarding")
	}
	if len(userRepo.Budgets[user.ID]) != 2 {
		t.Errorf("Expected 2 stored budgets, got %d", len(userRepo.Budgets[user.ID]))
	}
}

func TestOnboard_Handler_MissingSavings(t *testing.T) {
	e := echo.New()
	handler, _, user := newProfileFixture()

	body := `{"budgets": [{"name": "Rent", "percent": "35"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithUser(c, user.Auth0ID, user.Email, "", user.ID)

	if err := handler.Onboard(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "budgets" {
		t.Errorf("Expected budgets field error, got %+v", problem.Errors)
	}
}

func TestUpdateSettings_Handler_Success(t *testing.T) {
	e := echo.New()
	handler, _, user := newProfileFixture()

	body := `{
		"fullName": "Ada Bello",
		"preferredCurrency": "NGN",
		"conversionRate": "1500",
		"budgets": [{"name": "Savings / Investments", "percent": "50"}]
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithUser(c, user.Auth0ID, user.Email, "", user.ID)

	if err := handler.UpdateSettings(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response ProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.PreferredCurrency != "NGN" {
		t.Errorf("Expected preferred currency NGN, got %s", response.PreferredCurrency)
	}
	if response.ConversionRate != "1500" {
		t.Errorf("Expected conversion rate '1500', got %s", response.ConversionRate)
	}
}
