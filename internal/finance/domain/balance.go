package domain

import (
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/errors"
)

// MaxBalance is the largest value a NUMERIC(12,2) balance column holds.
var MaxBalance = decimal.RequireFromString("9999999999.99")

// ApplyDelta returns balance + delta, refusing results below zero or above MaxBalance.
func ApplyDelta(balance, delta decimal.Decimal) (decimal.Decimal, error) {
	next := balance.Add(delta).Round(2)
	if next.IsNegative() {
		return balance, errors.ErrInsufficientBalance
	}
	if next.GreaterThan(MaxBalance) {
		return balance, errors.NewValidationError("Balance would exceed the maximum allowed")
	}
	return next, nil
}

func Debit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	return ApplyDelta(balance, amount.Neg())
}

func Credit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	return ApplyDelta(balance, amount)
}
