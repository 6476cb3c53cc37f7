package infrastructure

import (
	"context"
	"database/sql"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindAccessible(ctx context.Context, userID int64) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, user_id, created_at FROM categories WHERE user_id IS NULL OR user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, user_id) VALUES ($1, $2) RETURNING id, created_at`,
		category.Name, ownerColumn(category.Owner),
	).Scan(&category.ID, &category.CreatedAt)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		category domain.Category
		owner    sql.NullInt64
	)
	if err := row.Scan(&category.ID, &category.Name, &owner, &category.CreatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		category.Owner = domain.OwnedBy(owner.Int64)
	} else {
		category.Owner = domain.Global()
	}
	return &category, nil
}

// ownerColumn maps the owner onto the nullable user_id column.
func ownerColumn(owner domain.Owner) sql.NullInt64 {
	id, ok := owner.UserID()
	return sql.NullInt64{Int64: id, Valid: ok}
}
