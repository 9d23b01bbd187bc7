package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const incomeColumns = `id, user_id, amount::text, amount_original::text, currency, date, created_at, updated_at`

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var (
		income   domain.Income
		amount   string
		original string
		currency string
	)
	err := row.Scan(&income.ID, &income.UserID, &amount, &original, &currency,
		&income.Date, &income.CreatedAt, &income.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	if income.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid stored amount: %w", err)
	}
	if income.AmountOriginal, err = decimal.NewFromString(original); err != nil {
		return nil, fmt.Errorf("invalid stored original amount: %w", err)
	}
	income.Currency = domain.NormalizeCurrency(currency)
	return &income, nil
}

// insertAllocations writes the allocation rows for one income inside the
// caller's transaction, preserving submitted order
func insertAllocations(ctx context.Context, tx pgx.Tx, incomeID uuid.UUID, allocations []*domain.Allocation) error {
	for position, allocation := range allocations {
		err := tx.QueryRow(ctx, `
			INSERT INTO income_allocations (income_id, name, percent, amount, description, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			incomeID, allocation.Name, allocation.Percent.String(), allocation.Amount.String(),
			allocation.Description, position,
		).Scan(&allocation.ID)
		if err != nil {
			return err
		}
		allocation.IncomeID = incomeID
	}
	return nil
}

// Create inserts the income and its allocations atomically
func (r *IncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO incomes (user_id, amount, amount_original, currency, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		income.UserID, income.Amount.String(), income.AmountOriginal.String(),
		string(income.Currency), income.Date,
	).Scan(&income.ID, &income.CreatedAt, &income.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := insertAllocations(ctx, tx, income.ID, income.Allocations); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return income, nil
}

// GetByID retrieves one income with allocations, scoped to the owner
func (r *IncomeRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Income, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = $1 AND user_id = $2`, id, userID)
	income, err := scanIncome(row)
	if err != nil {
		return nil, err
	}
	if err := r.attachAllocations(ctx, []*domain.Income{income}); err != nil {
		return nil, err
	}
	return income, nil
}

// attachAllocations loads the allocation rows for the given incomes in one
// query and attaches them in stored order
func (r *IncomeRepository) attachAllocations(ctx context.Context, incomes []*domain.Income) error {
	if len(incomes) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Income, len(incomes))
	ids := make([]uuid.UUID, 0, len(incomes))
	for _, income := range incomes {
		income.Allocations = []*domain.Allocation{}
		byID[income.ID] = income
		ids = append(ids, income.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, income_id, name, percent::text, amount::text, description
		FROM income_allocations
		WHERE income_id = ANY($1)
		ORDER BY income_id, position`,
		ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			allocation domain.Allocation
			percent    string
			amount     string
		)
		if err := rows.Scan(&allocation.ID, &allocation.IncomeID, &allocation.Name,
			&percent, &amount, &allocation.Description); err != nil {
			return err
		}
		if allocation.Percent, err = decimal.NewFromString(percent); err != nil {
			return fmt.Errorf("invalid stored percent: %w", err)
		}
		if allocation.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("invalid stored allocation amount: %w", err)
		}
		if income, ok := byID[allocation.IncomeID]; ok {
			a := allocation
			income.Allocations = append(income.Allocations, &a)
		}
	}
	return rows.Err()
}

// ListPage returns one keyset page ordered by date desc, id desc. The
// cursor is the id of the last row of the previous page.
func (r *IncomeRepository) ListPage(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int32) (*domain.IncomePage, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if cursor != nil {
		var cursorDate time.Time
		err = r.pool.QueryRow(ctx, `SELECT date FROM incomes WHERE id = $1 AND user_id = $2`, *cursor, userID).Scan(&cursorDate)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrInvalidCursor
			}
			return nil, err
		}
		rows, err = r.pool.Query(ctx, `
			SELECT `+incomeColumns+`
			FROM incomes
			WHERE user_id = $1 AND (date, id) < ($2, $3)
			ORDER BY date DESC, id DESC
			LIMIT $4`,
			userID, cursorDate, *cursor, limit+1)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+incomeColumns+`
			FROM incomes
			WHERE user_id = $1
			ORDER BY date DESC, id DESC
			LIMIT $2`,
			userID, limit+1)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make([]*domain.Income, 0, limit+1)
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Fetch one extra row to learn whether another page exists
	page := &domain.IncomePage{}
	if int32(len(incomes)) > limit {
		incomes = incomes[:limit]
		last := incomes[len(incomes)-1].ID
		page.NextCursor = &last
	}
	page.Entries = incomes

	if err := r.attachAllocations(ctx, incomes); err != nil {
		return nil, err
	}
	return page, nil
}

// Replace updates amount and date and swaps the full allocation set in one
// transaction: either everything lands or nothing does
func (r *IncomeRepository) Replace(ctx context.Context, income *domain.Income) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE incomes
		SET amount = $3, date = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		income.ID, income.UserID, income.Amount.String(), income.Date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM income_allocations WHERE income_id = $1`, income.ID); err != nil {
		return err
	}

	if err := insertAllocations(ctx, tx, income.ID, income.Allocations); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes an income; allocations go with it via ON DELETE CASCADE
func (r *IncomeRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM incomes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}

func sumFromRow(row pgx.Row) (decimal.Decimal, error) {
	var sum string
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid aggregate: %w", err)
	}
	return d, nil
}

// SumIncome totals normalized income amounts, optionally within [From, To)
func (r *IncomeRepository) SumIncome(ctx context.Context, userID uuid.UUID, rng *domain.DateRange) (decimal.Decimal, error) {
	if rng == nil {
		return sumFromRow(r.pool.QueryRow(ctx,
			`SELECT COALESCE(SUM(amount), 0)::text FROM incomes WHERE user_id = $1`, userID))
	}
	return sumFromRow(r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM incomes
		WHERE user_id = $1 AND date >= $2 AND date < $3`,
		userID, rng.From, rng.To))
}

// SumAllocated totals all allocation amounts, optionally within [From, To)
func (r *IncomeRepository) SumAllocated(ctx context.Context, userID uuid.UUID, rng *domain.DateRange) (decimal.Decimal, error) {
	if rng == nil {
		return sumFromRow(r.pool.QueryRow(ctx, `
			SELECT COALESCE(SUM(a.amount), 0)::text
			FROM income_allocations a
			JOIN incomes i ON i.id = a.income_id
			WHERE i.user_id = $1`, userID))
	}
	return sumFromRow(r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(a.amount), 0)::text
		FROM income_allocations a
		JOIN incomes i ON i.id = a.income_id
		WHERE i.user_id = $1 AND i.date >= $2 AND i.date < $3`,
		userID, rng.From, rng.To))
}

// SumSavings totals amounts of the designated savings allocations using a
// case-insensitive name match, optionally within [From, To)
func (r *IncomeRepository) SumSavings(ctx context.Context, userID uuid.UUID, rng *domain.DateRange) (decimal.Decimal, error) {
	if rng == nil {
		return sumFromRow(r.pool.QueryRow(ctx, `
			SELECT COALESCE(SUM(a.amount), 0)::text
			FROM income_allocations a
			JOIN incomes i ON i.id = a.income_id
			WHERE i.user_id = $1 AND LOWER(a.name) = LOWER($2)`,
			userID, domain.SavingsBudgetName))
	}
	return sumFromRow(r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(a.amount), 0)::text
		FROM income_allocations a
		JOIN incomes i ON i.id = a.income_id
		WHERE i.user_id = $1 AND LOWER(a.name) = LOWER($2) AND i.date >= $3 AND i.date < $4`,
		userID, domain.SavingsBudgetName, rng.From, rng.To))
}

// ListWithAllocations returns incomes dated in [From, To) with allocations
// attached, for month bucketing
func (r *IncomeRepository) ListWithAllocations(ctx context.Context, userID uuid.UUID, rng domain.DateRange) ([]*domain.Income, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+incomeColumns+`
		FROM incomes
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC, id ASC`,
		userID, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := []*domain.Income{}
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAllocations(ctx, incomes); err != nil {
		return nil, err
	}
	return incomes, nil
}
