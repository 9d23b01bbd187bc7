package service

import (
	"context"
	"testing"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedIncome(repo *testutil.MockIncomeRepository, userID uuid.UUID, date time.Time, amount string, savingsPercent string) {
	amt := decimal.RequireFromString(amount)
	income := &domain.Income{
		UserID:         userID,
		Amount:         amt,
		AmountOriginal: amt,
		Currency:       domain.CurrencyUSD,
		Date:           date,
	}
	if savingsPercent != "" {
		percent := decimal.RequireFromString(savingsPercent)
		income.Allocations = []*domain.Allocation{{
			Name:    domain.SavingsBudgetName,
			Percent: percent,
			Amount:  amt.Mul(percent).Div(decimal.NewFromInt(100)),
		}}
	}
	if _, err := repo.Create(context.Background(), income); err != nil {
		panic(err)
	}
}

func TestGetSummary_Totals(t *testing.T) {
	incomeRepo := testutil.NewMockIncomeRepository()
	dashboardService := NewDashboardService(incomeRepo)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local)
	dashboardService.now = func() time.Time { return now }

	userID := uuid.New()
	// This month: 1000 with 30% savings
	seedIncome(incomeRepo, userID, time.Date(2026, 8, 5, 0, 0, 0, 0, time.Local), "1000", "30")
	// Two months back: 500 with 50% savings
	seedIncome(incomeRepo, userID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.Local), "500", "50")
	// Unallocated income last month
	seedIncome(incomeRepo, userID, time.Date(2026, 7, 1, 0, 0, 0, 0, time.Local), "200", "")

	summary, err := dashboardService.GetSummary(context.Background(), userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !summary.TotalIncome.Equal(decimal.RequireFromString("1700")) {
		t.Errorf("Expected total income 1700, got %s", summary.TotalIncome)
	}
	if !summary.TotalSaved.Equal(decimal.RequireFromString("550")) {
		t.Errorf("Expected total saved 550, got %s", summary.TotalSaved)
	}
	if !summary.TotalExpenses.Equal(decimal.RequireFromString("1150")) {
		t.Errorf("Expected total expenses 1150, got %s", summary.TotalExpenses)
	}
	if !summary.MonthIncome.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("Expected month income 1000, got %s", summary.MonthIncome)
	}
	if !summary.MonthSaved.Equal(decimal.RequireFromString("300")) {
		t.Errorf("Expected month saved 300, got %s", summary.MonthSaved)
	}
	if summary.MonthLabel != "August 2026" {
		t.Errorf("Expected month label 'August 2026', got %q", summary.MonthLabel)
	}
}

func TestGetSummary_GrowthSeedsEmptyMonths(t *testing.T) {
	incomeRepo := testutil.NewMockIncomeRepository()
	dashboardService := NewDashboardService(incomeRepo)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.Local)
	dashboardService.now = func() time.Time { return now }

	userID := uuid.New()
	// Only one income in the trailing window
	seedIncome(incomeRepo, userID, time.Date(2026, 5, 15, 0, 0, 0, 0, time.Local), "400", "25")
	// Income before the window must not appear
	seedIncome(incomeRepo, userID, time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local), "9000", "100")

	summary, err := dashboardService.GetSummary(context.Background(), userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(summary.Growth) != TrailingMonths {
		t.Fatalf("Expected %d growth buckets, got %d", TrailingMonths, len(summary.Growth))
	}

	expectedKeys := []string{"2026-03", "2026-04", "2026-05", "2026-06", "2026-07", "2026-08"}
	for i, key := range expectedKeys {
		if summary.Growth[i].Key != key {
			t.Errorf("Bucket %d: expected key %s, got %s", i, key, summary.Growth[i].Key)
		}
	}

	zeros := 0
	for _, bucket := range summary.Growth {
		if bucket.Saved.IsZero() {
			zeros++
		}
	}
	if zeros != TrailingMonths-1 {
		t.Errorf("Expected %d zero buckets, got %d", TrailingMonths-1, zeros)
	}

	if !summary.Growth[2].Saved.Equal(decimal.RequireFromString("100")) {
		t.Errorf("Expected May bucket saved 100, got %s", summary.Growth[2].Saved)
	}
	if summary.Growth[2].Label != "May" {
		t.Errorf("Expected label 'May', got %q", summary.Growth[2].Label)
	}
}

func TestGetSummary_EmptyHistory(t *testing.T) {
	incomeRepo := testutil.NewMockIncomeRepository()
	dashboardService := NewDashboardService(incomeRepo)

	summary, err := dashboardService.GetSummary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !summary.TotalIncome.IsZero() || !summary.TotalSaved.IsZero() || !summary.TotalExpenses.IsZero() {
		t.Errorf("Expected zero totals for user with no incomes")
	}
	if len(summary.Growth) != TrailingMonths {
		t.Errorf("Expected %d growth buckets even with no history, got %d", TrailingMonths, len(summary.Growth))
	}
}
