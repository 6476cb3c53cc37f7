package interfaces

import (
	"context"
	"errors"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
)

var errService = errors.New("service error")

type MockCategoryService struct {
	categories []domain.Category
	created    *domain.Category
	deleteErr  error
	shouldFail bool

	deletedID int64
}

func (m *MockCategoryService) GetCategories(ctx context.Context, userID int64) ([]domain.Category, error) {
	if m.shouldFail {
		return nil, errService
	}
	return m.categories, nil
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, userID int64, name string) (*domain.Category, error) {
	if m.shouldFail {
		return nil, errService
	}
	category, err := domain.NewUserCategory(name, userID)
	if err != nil {
		return nil, err
	}
	category.ID = 10
	m.created = category
	return category, nil
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	if m.shouldFail {
		return errService
	}
	m.deletedID = categoryID
	return m.deleteErr
}

type MockExpenseService struct {
	expenses   []domain.Expense
	createErr  error
	deleteErr  error
	shouldFail bool

	lastFilter domain.ExpenseFilter
	lastInput  domain.Expense
}

func (m *MockExpenseService) CreateExpense(ctx context.Context, userID int64, expense domain.Expense) (*domain.Expense, error) {
	if m.shouldFail {
		return nil, errService
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.lastInput = expense
	expense.ID = 1
	expense.UserID = userID
	expense.CategoryName = "food"
	expense.RoundToTwoDecimalPlaces()
	return &expense, nil
}

func (m *MockExpenseService) GetExpenses(ctx context.Context, userID int64, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	if m.shouldFail {
		return nil, errService
	}
	m.lastFilter = filter
	return m.expenses, nil
}

func (m *MockExpenseService) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	if m.shouldFail {
		return errService
	}
	return m.deleteErr
}

type MockSummaryService struct {
	summary    *domain.Summary
	shouldFail bool
}

func (m *MockSummaryService) GetSummary(ctx context.Context, userID int64) (*domain.Summary, error) {
	if m.shouldFail {
		return nil, errService
	}
	return m.summary, nil
}
