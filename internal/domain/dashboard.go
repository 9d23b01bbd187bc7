package domain

import "github.com/shopspring/decimal"

// MonthlySavings is one bucket of the trailing savings series
type MonthlySavings struct {
	Key   string          `json:"key"`   // local year-month, e.g. "2026-08"
	Label string          `json:"label"` // short month name, e.g. "Aug"
	Saved decimal.Decimal `json:"saved"`
}

// DashboardSummary aggregates a user's income history for the dashboard
type DashboardSummary struct {
	TotalIncome    decimal.Decimal  `json:"totalIncome"`
	TotalSaved     decimal.Decimal  `json:"totalSaved"`
	TotalExpenses  decimal.Decimal  `json:"totalExpenses"`
	TotalAllocated decimal.Decimal  `json:"totalAllocated"`
	MonthIncome    decimal.Decimal  `json:"monthIncome"`
	MonthSaved     decimal.Decimal  `json:"monthSaved"`
	MonthLabel     string           `json:"monthLabel"`
	Growth         []MonthlySavings `json:"growth"`
}
