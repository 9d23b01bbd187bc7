package service

import (
	"context"
	"strings"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/money"
	"github.com/accrue-app/accrue-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetInput is a candidate budget template as submitted by the client
type BudgetInput struct {
	Name    string    `json:"name"`
	Percent money.Raw `json:"percent"`
}

// OnboardingInput is the payload completing first-time setup
type OnboardingInput struct {
	FullName string        `json:"fullName"`
	Budgets  []BudgetInput `json:"budgets"`
}

// SettingsInput is the payload for a settings update. ConversionRate and
// ImageKey are optional; empty values leave the stored ones untouched.
type SettingsInput struct {
	FullName          string        `json:"fullName"`
	PreferredCurrency string        `json:"preferredCurrency"`
	ConversionRate    money.Raw     `json:"conversionRate"`
	ImageKey          *string       `json:"imageKey,omitempty"`
	Budgets           []BudgetInput `json:"budgets"`
}

// ProfileService handles user profile, onboarding and settings logic
type ProfileService struct {
	userRepo  domain.UserRepository
	publisher websocket.EventPublisher
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository, publisher websocket.EventPublisher) *ProfileService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &ProfileService{userRepo: userRepo, publisher: publisher}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// normalizeBudgets applies the allocation normalization rules to budget
// templates and enforces the onboarding invariants: at least one budget, a
// positive savings budget, and a total of at most 100%.
func normalizeBudgets(inputs []BudgetInput) ([]*domain.Budget, error) {
	budgets := make([]*domain.Budget, 0, len(inputs))
	total := decimal.Zero
	hasSavings := false
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		percent := input.Percent.Decimal()
		if name == "" || !percent.IsPositive() {
			continue
		}
		if domain.IsSavingsAllocation(name) {
			hasSavings = true
		}
		total = total.Add(percent)
		budgets = append(budgets, &domain.Budget{
			Name:     name,
			Percent:  percent,
			Position: int32(len(budgets)),
		})
	}
	if len(budgets) == 0 {
		return nil, domain.ErrBudgetRequired
	}
	if !hasSavings {
		return nil, domain.ErrSavingsBudgetRequired
	}
	if total.GreaterThan(oneHundred) {
		return nil, domain.ErrAllocationOverflow
	}
	return budgets, nil
}

// Onboard validates the submitted budgets and transactionally replaces the
// budget set, sets the display name, and marks the user onboarded
func (s *ProfileService) Onboard(ctx context.Context, userID uuid.UUID, input OnboardingInput) error {
	budgets, err := normalizeBudgets(input.Budgets)
	if err != nil {
		return err
	}

	var name *string
	if trimmed := strings.TrimSpace(input.FullName); trimmed != "" {
		name = &trimmed
	}

	if err := s.userRepo.CompleteOnboarding(ctx, userID, name, budgets); err != nil {
		return err
	}

	s.publisher.Publish(userID, websocket.BudgetsUpdated(budgets))
	return nil
}

// UpdateSettings validates and transactionally applies a settings update
// together with its replacement budget set
func (s *ProfileService) UpdateSettings(ctx context.Context, userID uuid.UUID, input SettingsInput) (*domain.User, error) {
	budgets, err := normalizeBudgets(input.Budgets)
	if err != nil {
		return nil, err
	}

	settings := domain.UserSettings{ImageKey: input.ImageKey}

	if trimmed := strings.TrimSpace(input.FullName); trimmed != "" {
		settings.Name = &trimmed
	}

	if strings.TrimSpace(input.PreferredCurrency) != "" {
		currency := domain.NormalizeCurrency(input.PreferredCurrency)
		settings.PreferredCurrency = &currency
	}

	if strings.TrimSpace(string(input.ConversionRate)) != "" {
		rate := input.ConversionRate.Decimal()
		if !rate.IsPositive() {
			return nil, domain.ErrInvalidConversionRate
		}
		settings.ConversionRate = &rate
	}

	user, err := s.userRepo.UpdateSettings(ctx, userID, settings, budgets)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.ProfileUpdated(user))
	s.publisher.Publish(userID, websocket.BudgetsUpdated(budgets))
	return user, nil
}
