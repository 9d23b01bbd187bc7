package postgres

import (
	"context"
	"fmt"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL.
// Budget writes go through UserRepository so they share a transaction with
// the owning user row.
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// ListByUser returns the user's budgets in display order
func (r *BudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, percent::text, position
		FROM budgets
		WHERE user_id = $1
		ORDER BY position ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []*domain.Budget{}
	for rows.Next() {
		var (
			budget  domain.Budget
			percent string
		)
		if err := rows.Scan(&budget.ID, &budget.UserID, &budget.Name, &percent, &budget.Position); err != nil {
			return nil, err
		}
		if budget.Percent, err = decimal.NewFromString(percent); err != nil {
			return nil, fmt.Errorf("invalid stored percent: %w", err)
		}
		budgets = append(budgets, &budget)
	}
	return budgets, rows.Err()
}
