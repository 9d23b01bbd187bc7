package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code the app knows how to display
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyNGN Currency = "NGN"
)

// StorageCurrency is the currency every income amount is normalized to at
// write time. Original user-entered amounts are kept alongside.
const StorageCurrency = CurrencyUSD

// NormalizeCurrency maps free-form input to a supported currency,
// defaulting to USD
func NormalizeCurrency(value string) Currency {
	if strings.ToUpper(strings.TrimSpace(value)) == string(CurrencyNGN) {
		return CurrencyNGN
	}
	return CurrencyUSD
}

// User represents a user in the system
type User struct {
	ID                uuid.UUID       `json:"id"`
	Auth0ID           string          `json:"auth0Id"`
	Email             string          `json:"email"`
	Name              *string         `json:"name"`
	ImageKey          *string         `json:"imageKey"`
	PreferredCurrency Currency        `json:"preferredCurrency"`
	ConversionRate    decimal.Decimal `json:"conversionRate"`
	Onboarded         bool            `json:"onboarded"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// UserSettings carries a settings update. Nil fields are left untouched.
type UserSettings struct {
	Name              *string
	PreferredCurrency *Currency
	ConversionRate    *decimal.Decimal
	ImageKey          *string
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*User, error)
	// CompleteOnboarding marks the user onboarded, optionally sets the name,
	// and replaces the full budget set in a single transaction.
	CompleteOnboarding(ctx context.Context, userID uuid.UUID, name *string, budgets []*Budget) error
	// UpdateSettings applies the settings and replaces the budget set in a
	// single transaction.
	UpdateSettings(ctx context.Context, userID uuid.UUID, settings UserSettings, budgets []*Budget) (*User, error)
}
