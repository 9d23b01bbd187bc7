package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const userColumns = `id, auth0_id, email, name, image_key, preferred_currency, conversion_rate::text, onboarded, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user     domain.User
		currency string
		rate     string
	)
	err := row.Scan(&user.ID, &user.Auth0ID, &user.Email, &user.Name, &user.ImageKey,
		&currency, &rate, &user.Onboarded, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	user.PreferredCurrency = domain.NormalizeCurrency(currency)
	user.ConversionRate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid stored conversion rate: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByAuth0ID retrieves a user by Auth0 subject
func (r *UserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID)
	return scanUser(row)
}

// CreateOrGetByAuth0ID inserts the user row on first contact; subsequent
// calls refresh the email and return the existing row
func (r *UserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (auth0_id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (auth0_id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()
		RETURNING `+userColumns,
		auth0ID, email, name)
	return scanUser(row)
}

// replaceBudgets swaps the user's full budget set inside the caller's
// transaction
func replaceBudgets(ctx context.Context, tx pgx.Tx, userID uuid.UUID, budgets []*domain.Budget) error {
	if _, err := tx.Exec(ctx, `DELETE FROM budgets WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, budget := range budgets {
		err := tx.QueryRow(ctx, `
			INSERT INTO budgets (user_id, name, percent, position)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			userID, budget.Name, budget.Percent.String(), budget.Position,
		).Scan(&budget.ID)
		if err != nil {
			return err
		}
		budget.UserID = userID
	}
	return nil
}

// CompleteOnboarding marks the user onboarded, optionally sets the name, and
// replaces the budget set; all in one transaction
func (r *UserRepository) CompleteOnboarding(ctx context.Context, userID uuid.UUID, name *string, budgets []*domain.Budget) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET onboarded = TRUE, name = COALESCE($2, name), updated_at = now()
		WHERE id = $1`,
		userID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	if err := replaceBudgets(ctx, tx, userID, budgets); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateSettings applies a settings update and replaces the budget set in
// one transaction. Nil settings fields keep their stored values.
func (r *UserRepository) UpdateSettings(ctx context.Context, userID uuid.UUID, settings domain.UserSettings, budgets []*domain.Budget) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var currency, rate *string
	if settings.PreferredCurrency != nil {
		c := string(*settings.PreferredCurrency)
		currency = &c
	}
	if settings.ConversionRate != nil {
		s := settings.ConversionRate.String()
		rate = &s
	}

	row := tx.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
		    preferred_currency = COALESCE($3, preferred_currency),
		    conversion_rate = COALESCE($4::numeric, conversion_rate),
		    image_key = COALESCE($5, image_key),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		userID, settings.Name, currency, rate, settings.ImageKey)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	if err := replaceBudgets(ctx, tx, userID, budgets); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}
