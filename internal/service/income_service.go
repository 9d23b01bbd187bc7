package service

import (
	"context"
	"strings"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/money"
	"github.com/accrue-app/accrue-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// AllocationInput is a candidate allocation as submitted by the client
type AllocationInput struct {
	Name        string    `json:"name"`
	Percent     money.Raw `json:"percent"`
	Description *string   `json:"description,omitempty"`
}

// CreateIncomeInput is the payload for recording a new income event
type CreateIncomeInput struct {
	Amount      money.Raw         `json:"amount"`
	Currency    string            `json:"currency"`
	Date        string            `json:"date"`
	Allocations []AllocationInput `json:"allocations"`
}

// UpdateIncomeInput is the payload for editing an income event. The amount
// is taken as already expressed in the storage currency, matching the edit
// flow which round-trips the stored amount.
type UpdateIncomeInput struct {
	Amount      money.Raw         `json:"amount"`
	Date        string            `json:"date"`
	Allocations []AllocationInput `json:"allocations"`
}

// IncomeService handles income and allocation business logic
type IncomeService struct {
	incomeRepo domain.IncomeRepository
	userRepo   domain.UserRepository
	publisher  websocket.EventPublisher
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(incomeRepo domain.IncomeRepository, userRepo domain.UserRepository, publisher websocket.EventPublisher) *IncomeService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &IncomeService{
		incomeRepo: incomeRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// parseDate accepts a calendar date as YYYY-MM-DD or an RFC 3339 timestamp
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.ErrInvalidDate
}

// normalizeAllocations trims names, drops empty or non-positive entries,
// enforces the 100% ceiling, and computes each derived amount from the
// normalized income amount
func normalizeAllocations(amount decimal.Decimal, inputs []AllocationInput) ([]*domain.Allocation, error) {
	allocations := make([]*domain.Allocation, 0, len(inputs))
	total := decimal.Zero
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		percent := input.Percent.Decimal()
		if name == "" || !percent.IsPositive() {
			continue
		}
		total = total.Add(percent)
		allocations = append(allocations, &domain.Allocation{
			Name:        name,
			Percent:     percent,
			Amount:      amount.Mul(percent).Div(oneHundred),
			Description: input.Description,
		})
	}
	if total.GreaterThan(oneHundred) {
		return nil, domain.ErrAllocationOverflow
	}
	return allocations, nil
}

// CreateIncome validates, normalizes and persists a new income event with
// its allocations. The entered amount is converted to the storage currency
// using the user's persisted conversion rate.
func (s *IncomeService) CreateIncome(ctx context.Context, userID uuid.UUID, input CreateIncomeInput) (*domain.Income, error) {
	amountOriginal := input.Amount.Decimal()
	if !amountOriginal.IsPositive() {
		return nil, domain.ErrAmountNotPositive
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	currency := domain.NormalizeCurrency(input.Currency)
	amount := amountOriginal
	if currency != domain.StorageCurrency {
		if !user.ConversionRate.IsPositive() {
			return nil, domain.ErrInvalidConversionRate
		}
		amount = amountOriginal.Div(user.ConversionRate)
	}

	allocations, err := normalizeAllocations(amount, input.Allocations)
	if err != nil {
		return nil, err
	}

	income := &domain.Income{
		UserID:         userID,
		Amount:         amount,
		AmountOriginal: amountOriginal,
		Currency:       currency,
		Date:           date,
		Allocations:    allocations,
	}

	created, err := s.incomeRepo.Create(ctx, income)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.IncomeCreated(created))
	return created, nil
}

// GetIncome retrieves one income with its allocations, scoped to the owner
func (s *IncomeService) GetIncome(ctx context.Context, userID, id uuid.UUID) (*domain.Income, error) {
	return s.incomeRepo.GetByID(ctx, userID, id)
}

// ListIncomes returns a cursor page of the user's incomes
func (s *IncomeService) ListIncomes(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, pageSize int32) (*domain.IncomePage, error) {
	return s.incomeRepo.ListPage(ctx, userID, cursor, domain.ClampPageSize(pageSize))
}

// UpdateIncome validates the edit and atomically replaces the stored amount,
// date and full allocation set. A failed validation writes nothing.
func (s *IncomeService) UpdateIncome(ctx context.Context, userID, id uuid.UUID, input UpdateIncomeInput) (*domain.Income, error) {
	existing, err := s.incomeRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	amount := input.Amount.Decimal()
	if !amount.IsPositive() {
		return nil, domain.ErrAmountNotPositive
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	allocations, err := normalizeAllocations(amount, input.Allocations)
	if err != nil {
		return nil, err
	}

	existing.Amount = amount
	existing.Date = date
	existing.Allocations = allocations

	if err := s.incomeRepo.Replace(ctx, existing); err != nil {
		return nil, err
	}

	updated, err := s.incomeRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.IncomeUpdated(updated))
	return updated, nil
}

// DeleteIncome removes an income event and its allocations
func (s *IncomeService) DeleteIncome(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.incomeRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publisher.Publish(userID, websocket.IncomeDeleted(map[string]string{"id": id.String()}))
	return nil
}
