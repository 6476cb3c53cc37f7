package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	financeErrors "github.com/sebuszqo/HomeBudget/internal/finance/errors"
)

// MockStore is an in-memory stand-in for the PostgreSQL repositories and ledger.
// A failed unit of work restores the state it started from.
type MockStore struct {
	mu         sync.Mutex
	Balances   map[int64]decimal.Decimal
	Categories []domain.Category
	Expenses   []domain.Expense
	nextID     int64
}

func NewMockStore() *MockStore {
	return &MockStore{Balances: map[int64]decimal.Decimal{}}
}

func (m *MockStore) AddUser(userID int64, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Balances[userID] = balance
}

func (m *MockStore) AddCategory(name string, owner domain.Owner) domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	category := domain.Category{ID: m.nextID, Name: name, Owner: owner, CreatedAt: time.Now()}
	m.Categories = append(m.Categories, category)
	return category
}

func (m *MockStore) BalanceOf(userID int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Balances[userID]
}

func (m *MockStore) FindAccessible(_ context.Context, userID int64) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	categories := []domain.Category{}
	for _, c := range m.Categories {
		if c.AccessibleBy(userID) {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (m *MockStore) Create(_ context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	category.ID = m.nextID
	category.CreatedAt = time.Now()
	m.Categories = append(m.Categories, *category)
	return nil
}

func (m *MockStore) FindByUser(_ context.Context, userID int64, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expenses := []domain.Expense{}
	for _, e := range m.Expenses {
		if e.UserID == userID && filter.Matches(e) {
			expenses = append(expenses, e)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].ID > expenses[j].ID
	})
	return expenses, nil
}

func (m *MockStore) Totals(_ context.Context, userID int64, monthStart, quarterStart, yearStart time.Time) (domain.PeriodTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var totals domain.PeriodTotals
	for _, e := range m.Expenses {
		if e.UserID != userID {
			continue
		}
		day := domain.TruncateToDay(e.Date)
		totals.Total = totals.Total.Add(e.Amount)
		if !day.Before(monthStart) {
			totals.Month = totals.Month.Add(e.Amount)
		}
		if !day.Before(quarterStart) {
			totals.Quarter = totals.Quarter.Add(e.Amount)
		}
		if !day.Before(yearStart) {
			totals.Year = totals.Year.Add(e.Amount)
		}
	}
	return totals, nil
}

func (m *MockStore) TotalsByCategory(_ context.Context, userID int64) ([]domain.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums := map[string]decimal.Decimal{}
	for _, e := range m.Expenses {
		if e.UserID == userID {
			sums[e.CategoryName] = sums[e.CategoryName].Add(e.Amount)
		}
	}
	totals := make([]domain.CategoryTotal, 0, len(sums))
	for name, total := range sums {
		totals = append(totals, domain.CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals, nil
}

func (m *MockStore) Balance(_ context.Context, userID int64) (decimal.Decimal, error) {
	return m.BalanceOf(userID), nil
}

func (m *MockStore) WithinTx(_ context.Context, fn func(tx domain.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	balances := make(map[int64]decimal.Decimal, len(m.Balances))
	for k, v := range m.Balances {
		balances[k] = v
	}
	categories := append([]domain.Category(nil), m.Categories...)
	expenses := append([]domain.Expense(nil), m.Expenses...)
	nextID := m.nextID

	if err := fn(&mockLedgerTx{store: m}); err != nil {
		m.Balances, m.Categories, m.Expenses, m.nextID = balances, categories, expenses, nextID
		return err
	}
	return nil
}

// mockLedgerTx runs with the store mutex already held.
type mockLedgerTx struct {
	store *MockStore
}

func (t *mockLedgerTx) LockBalance(_ context.Context, userID int64) (decimal.Decimal, error) {
	return t.store.Balances[userID], nil
}

func (t *mockLedgerTx) SetBalance(_ context.Context, userID int64, balance decimal.Decimal) error {
	t.store.Balances[userID] = balance
	return nil
}

func (t *mockLedgerTx) FindAccessibleCategory(_ context.Context, categoryID, userID int64) (*domain.Category, error) {
	for _, c := range t.store.Categories {
		if c.ID == categoryID && c.AccessibleBy(userID) {
			found := c
			return &found, nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (t *mockLedgerTx) FindOwnedCategory(_ context.Context, categoryID, userID int64) (*domain.Category, error) {
	for _, c := range t.store.Categories {
		if c.ID == categoryID && c.DeletableBy(userID) {
			found := c
			return &found, nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (t *mockLedgerTx) SumCategoryExpenses(_ context.Context, categoryID, userID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range t.store.Expenses {
		if e.CategoryID == categoryID && e.UserID == userID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (t *mockLedgerTx) DeleteCategory(_ context.Context, categoryID int64) error {
	categories := t.store.Categories[:0:0]
	for _, c := range t.store.Categories {
		if c.ID != categoryID {
			categories = append(categories, c)
		}
	}
	expenses := t.store.Expenses[:0:0]
	for _, e := range t.store.Expenses {
		if e.CategoryID != categoryID {
			expenses = append(expenses, e)
		}
	}
	t.store.Categories, t.store.Expenses = categories, expenses
	return nil
}

func (t *mockLedgerTx) InsertExpense(_ context.Context, expense *domain.Expense) error {
	t.store.nextID++
	expense.ID = t.store.nextID
	t.store.Expenses = append(t.store.Expenses, *expense)
	return nil
}

func (t *mockLedgerTx) FindOwnedExpense(_ context.Context, expenseID, userID int64) (*domain.Expense, error) {
	for _, e := range t.store.Expenses {
		if e.ID == expenseID && e.UserID == userID {
			found := e
			return &found, nil
		}
	}
	return nil, financeErrors.ErrExpenseNotFound
}

func (t *mockLedgerTx) DeleteExpense(_ context.Context, expenseID int64) error {
	expenses := t.store.Expenses[:0:0]
	for _, e := range t.store.Expenses {
		if e.ID != expenseID {
			expenses = append(expenses, e)
		}
	}
	t.store.Expenses = expenses
	return nil
}
