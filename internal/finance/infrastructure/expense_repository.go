package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
)

const expenseColumns = `e.id, e.user_id, e.description, e.amount, e.date, e.category_id, c.name`

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) FindByUser(ctx context.Context, userID int64, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	query, args := buildExpenseQuery(userID, filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *expense)
	}
	return expenses, rows.Err()
}

func buildExpenseQuery(userID int64, filter domain.ExpenseFilter) (string, []any) {
	conditions := []string{"e.user_id = $1"}
	args := []any{userID}

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}
	if filter.CategoryID != nil {
		add("e.category_id = $%d", *filter.CategoryID)
	}
	if filter.MinAmount != nil {
		add("e.amount >= $%d", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		add("e.amount <= $%d", *filter.MaxAmount)
	}
	if filter.StartDate != nil {
		add("e.date >= $%d", filter.StartDate.Format(domain.DateLayout))
	}
	if filter.EndDate != nil {
		add("e.date <= $%d", filter.EndDate.Format(domain.DateLayout))
	}

	query := `SELECT ` + expenseColumns + `
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY e.date DESC, e.id DESC`
	return query, args
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var (
		expense     domain.Expense
		description sql.NullString
	)
	if err := row.Scan(&expense.ID, &expense.UserID, &description, &expense.Amount,
		&expense.Date, &expense.CategoryID, &expense.CategoryName); err != nil {
		return nil, err
	}
	expense.Description = description.String
	return &expense, nil
}
