package application

import (
	"context"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

type CategoryService struct {
	repo   domain.CategoryRepository
	ledger domain.Ledger
}

func NewCategoryService(repo domain.CategoryRepository, ledger domain.Ledger) *CategoryService {
	return &CategoryService{repo: repo, ledger: ledger}
}

func (s *CategoryService) GetCategories(ctx context.Context, userID int64) ([]domain.Category, error) {
	categories, err := s.repo.FindAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger(ctx).DebugContext(ctx, "categories listed", log.FieldOperation, log.OpList,
		log.FieldUserID, userID, log.FieldCount, len(categories))
	return categories, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID int64, name string) (*domain.Category, error) {
	category, err := domain.NewUserCategory(name, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.logger(ctx).InfoContext(ctx, "category created", log.FieldOperation, log.OpCreate,
		log.FieldUserID, userID, log.FieldCategoryID, category.ID)
	return category, nil
}

// DeleteCategory removes one of the user's own categories together with its
// expenses and gives the user back what those expenses cost.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	var refund string
	err := s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
		balance, err := tx.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := tx.FindOwnedCategory(ctx, categoryID, userID); err != nil {
			return err
		}
		spent, err := tx.SumCategoryExpenses(ctx, categoryID, userID)
		if err != nil {
			return err
		}
		next, err := domain.Credit(balance, spent)
		if err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, userID, next); err != nil {
			return err
		}
		refund = spent.StringFixed(2)
		return tx.DeleteCategory(ctx, categoryID)
	})
	if err != nil {
		return err
	}

	s.logger(ctx).InfoContext(ctx, "category deleted", log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID, log.FieldCategoryID, categoryID, log.FieldAmount, refund)
	return nil
}

func (s *CategoryService) logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentCategory)
}
