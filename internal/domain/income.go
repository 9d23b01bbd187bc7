package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingsBudgetName is the conventional allocation name that drives every
// "saved" aggregate. Matched case-insensitively; see IsSavingsAllocation.
const SavingsBudgetName = "Savings / Investments"

// IsSavingsAllocation reports whether an allocation counts toward savings
// aggregates
func IsSavingsAllocation(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), SavingsBudgetName)
}

// Income represents a single recorded deposit. Amount is normalized to the
// storage currency; AmountOriginal is what the user typed, in Currency.
type Income struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Amount         decimal.Decimal `json:"amount"`
	AmountOriginal decimal.Decimal `json:"amountOriginal"`
	Currency       Currency        `json:"currency"`
	Date           time.Time       `json:"date"`
	Allocations    []*Allocation   `json:"allocations"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Allocation is a named percentage split of one income event. Amount is the
// derived absolute value (income amount x percent / 100), stored redundantly
// and kept consistent on every write.
type Allocation struct {
	ID          uuid.UUID       `json:"id"`
	IncomeID    uuid.UUID       `json:"incomeId"`
	Name        string          `json:"name"`
	Percent     decimal.Decimal `json:"percent"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

// SavedAmount returns the original-currency amount attributed to the
// designated savings allocations of this income
func (i *Income) SavedAmount() decimal.Decimal {
	percent := decimal.Zero
	for _, allocation := range i.Allocations {
		if IsSavingsAllocation(allocation.Name) {
			percent = percent.Add(allocation.Percent)
		}
	}
	return i.AmountOriginal.Mul(percent).Div(decimal.NewFromInt(100))
}

// Pagination bounds for income listing
const (
	MinPageSize     = 5
	MaxPageSize     = 50
	DefaultPageSize = 20
)

// ClampPageSize bounds a requested page size to [MinPageSize, MaxPageSize],
// falling back to the default when unset
func ClampPageSize(requested int32) int32 {
	if requested == 0 {
		return DefaultPageSize
	}
	if requested < MinPageSize {
		return MinPageSize
	}
	if requested > MaxPageSize {
		return MaxPageSize
	}
	return requested
}

// IncomePage is one page of incomes ordered by date desc, id desc.
// NextCursor is the id of the last entry, or nil when exhausted.
type IncomePage struct {
	Entries    []*Income  `json:"entries"`
	NextCursor *uuid.UUID `json:"nextCursor"`
}

// DateRange is a half-open interval [From, To)
type DateRange struct {
	From time.Time
	To   time.Time
}

// IncomeRepository defines the interface for income persistence. Create and
// Replace must write the income row and its allocation rows atomically.
type IncomeRepository interface {
	Create(ctx context.Context, income *Income) (*Income, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Income, error)
	// ListPage returns up to limit incomes after the cursor, ordered by
	// date desc then id desc, with allocations attached.
	ListPage(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int32) (*IncomePage, error)
	// Replace updates amount and date and swaps the full allocation set
	// in one transaction.
	Replace(ctx context.Context, income *Income) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Aggregates used by the dashboard. A nil range means all time.
	SumIncome(ctx context.Context, userID uuid.UUID, rng *DateRange) (decimal.Decimal, error)
	SumAllocated(ctx context.Context, userID uuid.UUID, rng *DateRange) (decimal.Decimal, error)
	SumSavings(ctx context.Context, userID uuid.UUID, rng *DateRange) (decimal.Decimal, error)
	// ListWithAllocations returns the incomes dated in rng with allocations
	// attached, for month bucketing.
	ListWithAllocations(ctx context.Context, userID uuid.UUID, rng DateRange) ([]*Income, error)
}
