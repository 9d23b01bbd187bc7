package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/accrue-app/accrue-backend/internal/domain"
	"github.com/accrue-app/accrue-backend/internal/repository/storage"
	"github.com/accrue-app/accrue-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users   map[string]*domain.User
	ByID    map[uuid.UUID]*domain.User
	Budgets map[uuid.UUID][]*domain.Budget
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:   make(map[string]*domain.User),
		ByID:    make(map[uuid.UUID]*domain.User),
		Budgets: make(map[uuid.UUID][]*domain.Budget),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:                uuid.New(),
		Auth0ID:           auth0ID,
		Email:             email,
		Name:              name,
		PreferredCurrency: domain.CurrencyUSD,
		ConversionRate:    decimal.Zero,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	m.AddUser(user)
	return user, nil
}

// CompleteOnboarding marks the user onboarded and replaces their budgets
func (m *MockUserRepository) CompleteOnboarding(ctx context.Context, userID uuid.UUID, name *string, budgets []*domain.Budget) error {
	user, ok := m.ByID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if name != nil {
		user.Name = name
	}
	user.Onboarded = true
	m.replaceBudgets(userID, budgets)
	return nil
}

// UpdateSettings applies the settings and replaces the budget set
func (m *MockUserRepository) UpdateSettings(ctx context.Context, userID uuid.UUID, settings domain.UserSettings, budgets []*domain.Budget) (*domain.User, error) {
	user, ok := m.ByID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if settings.Name != nil {
		user.Name = settings.Name
	}
	if settings.PreferredCurrency != nil {
		user.PreferredCurrency = *settings.PreferredCurrency
	}
	if settings.ConversionRate != nil {
		user.ConversionRate = *settings.ConversionRate
	}
	if settings.ImageKey != nil {
		user.ImageKey = settings.ImageKey
	}
	user.UpdatedAt = time.Now()
	m.replaceBudgets(userID, budgets)
	return user, nil
}

func (m *MockUserRepository) replaceBudgets(userID uuid.UUID, budgets []*domain.Budget) {
	stored := make([]*domain.Budget, 0, len(budgets))
	for _, b := range budgets {
		copied := *b
		if copied.ID == uuid.Nil {
			copied.ID = uuid.New()
		}
		copied.UserID = userID
		stored = append(stored, &copied)
	}
	m.Budgets[userID] = stored
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository.
// It reads from the same budget map a MockUserRepository writes to.
type MockBudgetRepository struct {
	Budgets map[uuid.UUID][]*domain.Budget
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[uuid.UUID][]*domain.Budget)}
}

// ListByUser retrieves the user's budgets ordered by position
func (m *MockBudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	budgets := append([]*domain.Budget(nil), m.Budgets[userID]...)
	sort.SliceStable(budgets, func(i, j int) bool {
		return budgets[i].Position < budgets[j].Position
	})
	return budgets, nil
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository.
// It keeps incomes in a map and reproduces the (date desc, id desc) listing
// order and the dashboard aggregates in memory.
type MockIncomeRepository struct {
	Incomes  map[uuid.UUID]*domain.Income
	CreateFn func(income *domain.Income) (*domain.Income, error)
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{Incomes: make(map[uuid.UUID]*domain.Income)}
}

// Create stores a new income with generated IDs
func (m *MockIncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	if m.CreateFn != nil {
		return m.CreateFn(income)
	}
	income.ID = uuid.New()
	income.CreatedAt = time.Now()
	income.UpdatedAt = income.CreatedAt
	for _, a := range income.Allocations {
		a.ID = uuid.New()
		a.IncomeID = income.ID
	}
	m.Incomes[income.ID] = income
	return income, nil
}

// GetByID retrieves an income scoped to its owner
func (m *MockIncomeRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Income, error) {
	income, ok := m.Incomes[id]
	if !ok || income.UserID != userID {
		return nil, domain.ErrIncomeNotFound
	}
	return income, nil
}

// sorted returns the user's incomes ordered by date desc, id desc
func (m *MockIncomeRepository) sorted(userID uuid.UUID) []*domain.Income {
	incomes := make([]*domain.Income, 0, len(m.Incomes))
	for _, income := range m.Incomes {
		if income.UserID == userID {
			incomes = append(incomes, income)
		}
	}
	sort.Slice(incomes, func(i, j int) bool {
		if !incomes[i].Date.Equal(incomes[j].Date) {
			return incomes[i].Date.After(incomes[j].Date)
		}
		return incomes[i].ID.String() > incomes[j].ID.String()
	})
	return incomes
}

// ListPage returns one cursor page of the user's incomes
func (m *MockIncomeRepository) ListPage(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int32) (*domain.IncomePage, error) {
	incomes := m.sorted(userID)

	start := 0
	if cursor != nil {
		found := false
		for i, income := range incomes {
			if income.ID == *cursor {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, domain.ErrInvalidCursor
		}
	}

	page := &domain.IncomePage{Entries: []*domain.Income{}}
	for i := start; i < len(incomes) && len(page.Entries) < int(limit); i++ {
		page.Entries = append(page.Entries, incomes[i])
	}
	if last := start + len(page.Entries); last < len(incomes) && len(page.Entries) > 0 {
		id := page.Entries[len(page.Entries)-1].ID
		page.NextCursor = &id
	}
	return page, nil
}

// Replace updates the stored income wholesale
func (m *MockIncomeRepository) Replace(ctx context.Context, income *domain.Income) error {
	existing, ok := m.Incomes[income.ID]
	if !ok || existing.UserID != income.UserID {
		return domain.ErrIncomeNotFound
	}
	for _, a := range income.Allocations {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.IncomeID = income.ID
	}
	income.UpdatedAt = time.Now()
	m.Incomes[income.ID] = income
	return nil
}

// Delete removes an income
func (m *MockIncomeRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	income, ok := m.Incomes[id]
	if !ok || income.UserID != userID {
		return domain.ErrIncomeNotFound
	}
	delete(m.Incomes, id)
	return nil
}

func inRange(t time.Time, rng *domain.DateRange) bool {
	if rng == nil {
		return true
	}
	return !t.Before(rng.From) && t.Before(rng.To)
}

// SumIncome totals normalized income amounts
func (m *MockIncomeRepository) SumIncome(ctx context.Context, userID uuid.UUID, rng *domain.DateRange) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, income := range m.Incomes {
		if income.UserID == userID && inRange(income.Date, rng) {
			total = total.Add(income.Amount)
		}
	}
	return total, nil
}

// SumAllocated totals derived allocation amounts
func (m *MockIncomeRepository) SumAllocated(ctx context.Context, userID uuid.UUID, rng *domain.DateRange) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, income := range m.Incomes {
		if income.UserID != userID || !inRange(income.Date, rng) {
			continue
		}
		for _, a := range income.Allocations {
			total = total.Add(a.Amount)
		}
	}
	return total, nil
}

// SumSavings totals derived amounts of savings allocations
func (m *MockIncomeRepository) SumSavings(ctx context.Context, userID uuid.UUID, rng *domain.DateRange) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, income := range m.Incomes {
		if income.UserID != userID || !inRange(income.Date, rng) {
			continue
		}
		for _, a := range income.Allocations {
			if domain.IsSavingsAllocation(a.Name) {
				total = total.Add(a.Amount)
			}
		}
	}
	return total, nil
}

// ListWithAllocations returns the user's incomes dated in rng
func (m *MockIncomeRepository) ListWithAllocations(ctx context.Context, userID uuid.UUID, rng domain.DateRange) ([]*domain.Income, error) {
	incomes := make([]*domain.Income, 0)
	for _, income := range m.sorted(userID) {
		if inRange(income.Date, &rng) {
			incomes = append(incomes, income)
		}
	}
	return incomes, nil
}

// MockObjectStore is a mock implementation of storage.ObjectStore
type MockObjectStore struct {
	Objects      map[string][]byte
	ContentTypes map[string]string
	PresignFn    func(key, contentType string, expiry time.Duration) (string, error)
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// PresignPut returns a fake presigned URL for the key
func (m *MockObjectStore) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	if m.PresignFn != nil {
		return m.PresignFn(key, contentType, expiry)
	}
	return fmt.Sprintf("https://uploads.test/%s?signed=1", key), nil
}

// Get opens a stored object
func (m *MockObjectStore) Get(ctx context.Context, key string) (*storage.Object, error) {
	data, ok := m.Objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &storage.Object{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   m.ContentTypes[key],
		ContentLength: int64(len(data)),
	}, nil
}

// CapturePublisher records published events for assertions
type CapturePublisher struct {
	mu     sync.Mutex
	events []CapturedEvent
}

// CapturedEvent is one published event with its target user
type CapturedEvent struct {
	UserID uuid.UUID
	Event  websocket.Event
}

// Publish implements websocket.EventPublisher
func (p *CapturePublisher) Publish(userID uuid.UUID, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, CapturedEvent{UserID: userID, Event: event})
}

// Events returns a copy of the captured events
func (p *CapturePublisher) Events() []CapturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]CapturedEvent(nil), p.events...)
}
