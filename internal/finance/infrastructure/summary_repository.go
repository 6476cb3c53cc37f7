package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Totals(ctx context.Context, userID int64, monthStart, quarterStart, yearStart time.Time) (domain.PeriodTotals, error) {
	var totals domain.PeriodTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(amount) FILTER (WHERE date >= $2::date), 0),
			COALESCE(SUM(amount) FILTER (WHERE date >= $3::date), 0),
			COALESCE(SUM(amount) FILTER (WHERE date >= $4::date), 0)
		FROM expenses
		WHERE user_id = $1`,
		userID,
		monthStart.Format(domain.DateLayout),
		quarterStart.Format(domain.DateLayout),
		yearStart.Format(domain.DateLayout),
	).Scan(&totals.Total, &totals.Month, &totals.Quarter, &totals.Year)
	return totals, err
}

func (r *SummaryRepository) TotalsByCategory(ctx context.Context, userID int64) ([]domain.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, SUM(e.amount)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1
		GROUP BY c.name
		ORDER BY c.name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []domain.CategoryTotal{}
	for rows.Next() {
		var total domain.CategoryTotal
		if err := rows.Scan(&total.Category, &total.Total); err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

func (r *SummaryRepository) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	return balance, err
}
