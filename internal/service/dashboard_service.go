package service

import (
	"context"
	"fmt"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardService aggregates a user's income history for reporting
type DashboardService struct {
	incomeRepo domain.IncomeRepository
	now        func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(incomeRepo domain.IncomeRepository) *DashboardService {
	return &DashboardService{
		incomeRepo: incomeRepo,
		now:        time.Now,
	}
}

// TrailingMonths is the length of the dashboard savings series
const TrailingMonths = 6

// GetSummary computes all-time totals, current-calendar-month totals, and
// the trailing savings series bucketed by local year-month. Sums keep full
// precision; rounding happens at the response boundary.
func (s *DashboardService) GetSummary(ctx context.Context, userID uuid.UUID) (*domain.DashboardSummary, error) {
	now := s.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	startOfNextMonth := startOfMonth.AddDate(0, 1, 0)
	startOfRange := startOfMonth.AddDate(0, -(TrailingMonths - 1), 0)
	currentMonth := &domain.DateRange{From: startOfMonth, To: startOfNextMonth}

	totalIncome, err := s.incomeRepo.SumIncome(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	totalAllocated, err := s.incomeRepo.SumAllocated(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	totalSaved, err := s.incomeRepo.SumSavings(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	monthIncome, err := s.incomeRepo.SumIncome(ctx, userID, currentMonth)
	if err != nil {
		return nil, err
	}
	monthSaved, err := s.incomeRepo.SumSavings(ctx, userID, currentMonth)
	if err != nil {
		return nil, err
	}

	totalExpenses := totalIncome.Sub(totalSaved)
	if totalExpenses.IsNegative() {
		totalExpenses = decimal.Zero
	}

	growth, err := s.savingsSeries(ctx, userID, domain.DateRange{From: startOfRange, To: startOfNextMonth})
	if err != nil {
		return nil, err
	}

	return &domain.DashboardSummary{
		TotalIncome:    totalIncome,
		TotalSaved:     totalSaved,
		TotalExpenses:  totalExpenses,
		TotalAllocated: totalAllocated,
		MonthIncome:    monthIncome,
		MonthSaved:     monthSaved,
		MonthLabel:     now.Format("January 2006"),
		Growth:         growth,
	}, nil
}

// monthKey identifies a bucket by local year and month
func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// savingsSeries pre-seeds one zero bucket per trailing month so months with
// no income still appear, then accumulates each income's savings-designated
// allocation amounts into the bucket matching its date. Incomes outside the
// seeded range are dropped.
func (s *DashboardService) savingsSeries(ctx context.Context, userID uuid.UUID, rng domain.DateRange) ([]domain.MonthlySavings, error) {
	series := make([]domain.MonthlySavings, 0, TrailingMonths)
	index := make(map[string]int, TrailingMonths)
	for cursor := rng.From; cursor.Before(rng.To); cursor = cursor.AddDate(0, 1, 0) {
		key := monthKey(cursor)
		index[key] = len(series)
		series = append(series, domain.MonthlySavings{
			Key:   key,
			Label: cursor.Format("Jan"),
			Saved: decimal.Zero,
		})
	}

	incomes, err := s.incomeRepo.ListWithAllocations(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	for _, income := range incomes {
		i, ok := index[monthKey(income.Date.In(time.Local))]
		if !ok {
			continue
		}
		for _, allocation := range income.Allocations {
			if domain.IsSavingsAllocation(allocation.Name) {
				series[i].Saved = series[i].Saved.Add(allocation.Amount)
			}
		}
	}

	return series, nil
}
