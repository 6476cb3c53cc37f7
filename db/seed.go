package database

import (
	"context"
	"database/sql"
	"fmt"
)

// SeedPresetCategories inserts each name as a global category unless a global
// category with that name already exists. It returns how many rows were added.
func SeedPresetCategories(ctx context.Context, db *sql.DB, names []string) (int, error) {
	query := `
		INSERT INTO categories (name, user_id)
		SELECT $1::text, NULL::bigint
		WHERE NOT EXISTS (
			SELECT 1 FROM categories WHERE name = $1::text AND user_id IS NULL
		)
	`

	created := 0
	for _, name := range names {
		res, err := db.ExecContext(ctx, query, name)
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return created, fmt.Errorf("seed category %q: %w", name, err)
		}
		created += int(n)
	}
	return created, nil
}
