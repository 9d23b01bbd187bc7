package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a per-user named percentage template used to pre-populate new
// income allocations. Budgets are replaced wholesale during onboarding and
// settings updates; Position preserves the submitted order.
type Budget struct {
	ID       uuid.UUID       `json:"id"`
	UserID   uuid.UUID       `json:"userId"`
	Name     string          `json:"name"`
	Percent  decimal.Decimal `json:"percent"`
	Position int32           `json:"position"`
}

// BudgetRepository defines read access to budgets. Writes happen through
// UserRepository so they share a transaction with the user row.
type BudgetRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Budget, error)
}
