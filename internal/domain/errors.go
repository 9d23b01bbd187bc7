package domain

import "errors"

// Domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrUserNotFound    = errors.New("user not found")
	ErrIncomeNotFound  = errors.New("income not found")
	ErrInvalidCursor   = errors.New("invalid cursor")
	ErrUpstreamFailure = errors.New("upstream service failure")
	ErrRateUnavailable = errors.New("rate unavailable for that currency")
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// Validation errors surfaced to the client with a specific reason
var (
	ErrAmountNotPositive     = errors.New("amount must be greater than zero")
	ErrInvalidDate           = errors.New("invalid date")
	ErrAllocationOverflow    = errors.New("total allocation cannot exceed 100%")
	ErrInvalidConversionRate = errors.New("invalid conversion rate")
	ErrBudgetRequired        = errors.New("at least one budget is required")
	ErrSavingsBudgetRequired = errors.New("savings target is required")
)
