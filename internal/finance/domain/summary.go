package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

type Summary struct {
	TotalSpent       decimal.Decimal
	RemainingBalance decimal.Decimal
	ByCategory       []CategoryTotal
	SpentLastMonth   decimal.Decimal
	SpentLastQuarter decimal.Decimal
	SpentLastYear    decimal.Decimal
}

// PeriodTotals holds the overall sum and the sums of expenses dated on or after each start.
type PeriodTotals struct {
	Total   decimal.Decimal
	Month   decimal.Decimal
	Quarter decimal.Decimal
	Year    decimal.Decimal
}

type SummaryRepository interface {
	Totals(ctx context.Context, userID int64, monthStart, quarterStart, yearStart time.Time) (PeriodTotals, error)
	// TotalsByCategory groups the user's expenses by category name, omitting empty groups.
	TotalsByCategory(ctx context.Context, userID int64) ([]CategoryTotal, error)
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
}
