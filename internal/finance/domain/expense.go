package domain

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/errors"
)

const DateLayout = "2006-01-02"

var maxAmount = decimal.New(1, 10)

type ExpenseRepository interface {
	// FindByUser returns the user's expenses matching filter, newest first.
	FindByUser(ctx context.Context, userID int64, filter ExpenseFilter) ([]Expense, error)
}

type Expense struct {
	ID           int64
	UserID       int64
	Description  string
	Amount       decimal.Decimal
	Date         time.Time
	CategoryID   int64
	CategoryName string
}

func (e *Expense) RoundToTwoDecimalPlaces() {
	e.Amount = e.Amount.Round(2)
}

func (e *Expense) Validate() error {
	if utf8.RuneCountInString(e.Description) > 200 {
		return errors.NewValidationError("Description must be of length at most 200")
	}
	if e.Amount.IsNegative() {
		return errors.NewValidationError("Amount must not be negative")
	}
	if e.Amount.GreaterThanOrEqual(maxAmount) {
		return errors.NewValidationError("Amount is too large")
	}
	if e.CategoryID <= 0 {
		return errors.NewValidationError("category_id must be a positive integer")
	}
	return nil
}

// ExpenseFilter narrows an expense listing. Nil fields are not applied; bounds are inclusive.
type ExpenseFilter struct {
	CategoryID *int64
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
}

// Matches applies the filter to a single expense the same way the SQL query does.
func (f ExpenseFilter) Matches(e Expense) bool {
	if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
		return false
	}
	if f.MinAmount != nil && e.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && e.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	day := TruncateToDay(e.Date)
	if f.StartDate != nil && day.Before(TruncateToDay(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && day.After(TruncateToDay(*f.EndDate)) {
		return false
	}
	return true
}

// TruncateToDay drops the clock part of t, keeping its calendar date in UTC.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
