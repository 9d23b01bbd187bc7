package service

import (
	"context"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/google/uuid"
)

// BudgetService exposes the user's budget templates
type BudgetService struct {
	budgetRepo domain.BudgetRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository) *BudgetService {
	return &BudgetService{budgetRepo: budgetRepo}
}

// ListBudgets returns the user's budgets in display order
func (s *BudgetService) ListBudgets(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.ListByUser(ctx, userID)
}
