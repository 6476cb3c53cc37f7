package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger runs balance-affecting work as one unit: either every change made
// through the LedgerTx is committed or none is.
type Ledger interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

type LedgerTx interface {
	// LockBalance reads the user's balance and holds it until the unit ends.
	LockBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error

	FindAccessibleCategory(ctx context.Context, categoryID, userID int64) (*Category, error)
	FindOwnedCategory(ctx context.Context, categoryID, userID int64) (*Category, error)
	// SumCategoryExpenses totals the category's expenses that belong to userID.
	SumCategoryExpenses(ctx context.Context, categoryID, userID int64) (decimal.Decimal, error)
	DeleteCategory(ctx context.Context, categoryID int64) error

	InsertExpense(ctx context.Context, expense *Expense) error
	FindOwnedExpense(ctx context.Context, expenseID, userID int64) (*Expense, error)
	DeleteExpense(ctx context.Context, expenseID int64) error
}
