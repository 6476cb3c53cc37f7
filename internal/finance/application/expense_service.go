package application

import (
	"context"
	"time"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

type ExpenseService struct {
	repo   domain.ExpenseRepository
	ledger domain.Ledger
	now    func() time.Time
}

func NewExpenseService(repo domain.ExpenseRepository, ledger domain.Ledger, now func() time.Time) *ExpenseService {
	if now == nil {
		now = time.Now
	}
	return &ExpenseService{repo: repo, ledger: ledger, now: now}
}

// CreateExpense records the expense and debits its amount from the user's
// balance in one unit. A zero Date means today.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int64, expense domain.Expense) (*domain.Expense, error) {
	expense.UserID = userID
	if err := domain.CheckAmountScale(expense.Amount); err != nil {
		return nil, err
	}
	expense.RoundToTwoDecimalPlaces()
	if expense.Date.IsZero() {
		expense.Date = s.now()
	}
	expense.Date = domain.TruncateToDay(expense.Date)
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	var balance string
	err := s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
		category, err := tx.FindAccessibleCategory(ctx, expense.CategoryID, userID)
		if err != nil {
			return err
		}
		expense.CategoryName = category.Name

		current, err := tx.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		next, err := domain.Debit(current, expense.Amount)
		if err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, userID, next); err != nil {
			return err
		}
		balance = next.StringFixed(2)
		return tx.InsertExpense(ctx, &expense)
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).InfoContext(ctx, "expense created", log.FieldOperation, log.OpCreate,
		log.FieldUserID, userID, log.FieldExpenseID, expense.ID,
		log.FieldAmount, expense.Amount.StringFixed(2), log.FieldBalance, balance)
	return &expense, nil
}

func (s *ExpenseService) GetExpenses(ctx context.Context, userID int64, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	expenses, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	s.logger(ctx).DebugContext(ctx, "expenses listed", log.FieldOperation, log.OpList,
		log.FieldUserID, userID, log.FieldCount, len(expenses))
	return expenses, nil
}

// DeleteExpense removes the user's expense and refunds its amount.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	var refund string
	err := s.ledger.WithinTx(ctx, func(tx domain.LedgerTx) error {
		balance, err := tx.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		expense, err := tx.FindOwnedExpense(ctx, expenseID, userID)
		if err != nil {
			return err
		}
		next, err := domain.Credit(balance, expense.Amount)
		if err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, userID, next); err != nil {
			return err
		}
		refund = expense.Amount.StringFixed(2)
		return tx.DeleteExpense(ctx, expenseID)
	})
	if err != nil {
		return err
	}

	s.logger(ctx).InfoContext(ctx, "expense deleted", log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID, log.FieldExpenseID, expenseID, log.FieldAmount, refund)
	return nil
}

func (s *ExpenseService) logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentExpense)
}
