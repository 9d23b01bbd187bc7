package service

import (
	"context"
	"errors"
	"testing"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func addProfileUser(userRepo *testutil.MockUserRepository) *domain.User {
	user := &domain.User{
		ID:                uuid.New(),
		Auth0ID:           "auth0|profile123",
		Email:             "test@example.com",
		PreferredCurrency: domain.CurrencyUSD,
		ConversionRate:    decimal.Zero,
	}
	userRepo.AddUser(user)
	return user
}

func validBudgets() []BudgetInput {
	return []BudgetInput{
		{Name: "Savings / Investments", Percent: "40"},
		{Name: "Rent", Percent: "35"},
		{Name: "Groceries", Percent: "25"},
	}
}

func TestOnboard_Success(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	publisher := &testutil.CapturePublisher{}
	profileService := NewProfileService(userRepo, publisher)

	user := addProfileUser(userRepo)

	err := profileService.Onboard(context.Background(), user.ID, OnboardingInput{
		FullName: "  Ada Bello  ",
		Budgets:  validBudgets(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !user.Onboarded {
		t.Error("Expected user to be marked onboarded")
	}
	if user.Name == nil || *user.Name != "Ada Bello" {
		t.Errorf("Expected trimmed name 'Ada Bello', got %v", user.Name)
	}
	if len(userRepo.Budgets[user.ID]) != 3 {
		t.Errorf("Expected 3 stored budgets, got %d", len(userRepo.Budgets[user.ID]))
	}
	if len(publisher.Events()) != 1 {
		t.Errorf("Expected budgets event to be published")
	}
}

func TestOnboard_RequiresBudgets(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	profileService := NewProfileService(userRepo, nil)

	user := addProfileUser(userRepo)

	err := profileService.Onboard(context.Background(), user.ID, OnboardingInput{
		FullName: "Ada",
		Budgets: []BudgetInput{
			{Name: "   ", Percent: "50"},
			{Name: "Rent", Percent: "0"},
		},
	})
	if !errors.Is(err, domain.ErrBudgetRequired) {
		t.Errorf("Expected ErrBudgetRequired, got %v", err)
	}
	if user.Onboarded {
		t.Error("Failed onboarding must not mark the user onboarded")
	}
}

func TestOnboard_RequiresSavingsBudget(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	profileService := NewProfileService(userRepo, nil)

	user := addProfileUser(userRepo)

	err := profileService.Onboard(context.Background(), user.ID, OnboardingInput{
		Budgets: []BudgetInput{
			{Name: "Rent", Percent: "50"},
		},
	})
	if !errors.Is(err, domain.ErrSavingsBudgetRequired) {
		t.Errorf("Expected ErrSavingsBudgetRequired, got %v", err)
	}
}

func TestOnboard_RejectsOverflow(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	profileService := NewProfileService(userRepo, nil)

	user := addProfileUser(userRepo)

	err := profileService.Onboard(context.Background(), user.ID, OnboardingInput{
		Budgets: []BudgetInput{
			{Name: "Savings / Investments", Percent: "60"},
			{Name: "Rent", Percent: "41"},
		},
	})
	if !errors.Is(err, domain.ErrAllocationOverflow) {
		t.Errorf("Expected ErrAllocationOverflow, got %v", err)
	}
}

func TestUpdateSettings_AppliesFields(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	publisher := &testutil.CapturePublisher{}
	profileService := NewProfileService(userRepo, publisher)

	user := addProfileUser(userRepo)
	imageKey := "profiles/" + user.ID.String() + "/123.png"

	updated, err := profileService.UpdateSettings(context.Background(), user.ID, SettingsInput{
		FullName:          "Ada Bello",
		PreferredCurrency: "ngn",
		ConversionRate:    "1,500.00",
		ImageKey:          &imageKey,
		Budgets:           validBudgets(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if updated.PreferredCurrency != domain.CurrencyNGN {
		t.Errorf("Expected preferred currency NGN, got %s", updated.PreferredCurrency)
	}
	if !updated.ConversionRate.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("Expected conversion rate 1500, got %s", updated.ConversionRate)
	}
	if updated.ImageKey == nil || *updated.ImageKey != imageKey {
		t.Errorf("Expected image key to be stored")
	}
	if len(publisher.Events()) == 0 {
		t.Error("Expected settings update to publish events")
	}
}

func TestUpdateSettings_RejectsNonPositiveRate(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	profileService := NewProfileService(userRepo, nil)

	user := addProfileUser(userRepo)

	_, err := profileService.UpdateSettings(context.Background(), user.ID, SettingsInput{
		ConversionRate: "0",
		Budgets:        validBudgets(),
	})
	if !errors.Is(err, domain.ErrInvalidConversionRate) {
		t.Errorf("Expected ErrInvalidConversionRate, got %v", err)
	}
}

func TestUpdateSettings_EmptyFieldsLeaveStoredValues(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	profileService := NewProfileService(userRepo, nil)

	user := addProfileUser(userRepo)
	name := "Existing Name"
	user.Name = &name
	user.ConversionRate = decimal.RequireFromString("1400")

	updated, err := profileService.UpdateSettings(context.Background(), user.ID, SettingsInput{
		Budgets: validBudgets(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if updated.Name == nil || *updated.Name != "Existing Name" {
		t.Errorf("Expected name to be untouched, got %v", updated.Name)
	}
	if !updated.ConversionRate.Equal(decimal.RequireFromString("1400")) {
		t.Errorf("Expected conversion rate to be untouched, got %s", updated.ConversionRate)
	}
}
