package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	financeErrors "github.com/sebuszqo/HomeBudget/internal/finance/errors"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

// PostgresLedger runs each unit of work inside one *sql.Tx.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) (err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(ctx, tx)
			panic(p)
		} else if err != nil {
			safeRollback(ctx, tx)
		} else {
			err = tx.Commit()
		}
	}()

	return fn(&pgLedgerTx{tx: tx})
}

func safeRollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.FromContext(ctx).ErrorContext(ctx, "error during transaction rollback", log.FieldError, err)
	}
}

type pgLedgerTx struct {
	tx *sql.Tx
}

func (t *pgLedgerTx) LockBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := t.tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lock balance of user %d: %w", userID, err)
	}
	return balance, nil
}

func (t *pgLedgerTx) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, balance, userID)
	return err
}

func (t *pgLedgerTx) FindAccessibleCategory(ctx context.Context, categoryID, userID int64) (*domain.Category, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at FROM categories WHERE id = $1 AND (user_id IS NULL OR user_id = $2)`,
		categoryID, userID,
	)
	return categoryOrNotFound(row)
}

func (t *pgLedgerTx) FindOwnedCategory(ctx context.Context, categoryID, userID int64) (*domain.Category, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, name, user_id, created_at FROM categories WHERE id = $1 AND user_id = $2`,
		categoryID, userID,
	)
	return categoryOrNotFound(row)
}

func categoryOrNotFound(row *sql.Row) (*domain.Category, error) {
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return category, err
}

func (t *pgLedgerTx) SumCategoryExpenses(ctx context.Context, categoryID, userID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := t.tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE category_id = $1 AND user_id = $2`,
		categoryID, userID,
	).Scan(&sum)
	return sum, err
}

func (t *pgLedgerTx) DeleteCategory(ctx context.Context, categoryID int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	return err
}

func (t *pgLedgerTx) InsertExpense(ctx context.Context, expense *domain.Expense) error {
	return t.tx.QueryRowContext(ctx,
		`INSERT INTO expenses (description, amount, date, category_id, user_id)
		VALUES ($1, $2, $3::date, $4, $5)
		RETURNING id`,
		expense.Description, expense.Amount, expense.Date.Format(domain.DateLayout), expense.CategoryID, expense.UserID,
	).Scan(&expense.ID)
}

func (t *pgLedgerTx) FindOwnedExpense(ctx context.Context, expenseID, userID int64) (*domain.Expense, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+`
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.id = $1 AND e.user_id = $2`,
		expenseID, userID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrExpenseNotFound
	}
	return expense, err
}

func (t *pgLedgerTx) DeleteExpense(ctx context.Context, expenseID int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, expenseID)
	return err
}
