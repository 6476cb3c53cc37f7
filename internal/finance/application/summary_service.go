package application

import (
	"context"
	"time"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

type SummaryService struct {
	repo domain.SummaryRepository
	now  func() time.Time
}

func NewSummaryService(repo domain.SummaryRepository, now func() time.Time) *SummaryService {
	if now == nil {
		now = time.Now
	}
	return &SummaryService{repo: repo, now: now}
}

// GetSummary aggregates the user's spending. Periods start today minus one,
// three and twelve calendar months and include their first day.
func (s *SummaryService) GetSummary(ctx context.Context, userID int64) (*domain.Summary, error) {
	today := domain.TruncateToDay(s.now())

	totals, err := s.repo.Totals(ctx, userID,
		SubtractMonths(today, 1),
		SubtractMonths(today, 3),
		SubtractMonths(today, 12),
	)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.TotalsByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentSummary).DebugContext(ctx, "summary computed",
		log.FieldOperation, log.OpSummary, log.FieldUserID, userID, log.FieldCount, len(byCategory))

	return &domain.Summary{
		TotalSpent:       totals.Total,
		RemainingBalance: balance,
		ByCategory:       byCategory,
		SpentLastMonth:   totals.Month,
		SpentLastQuarter: totals.Quarter,
		SpentLastYear:    totals.Year,
	}, nil
}
