package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNoTwoFactorSecret = errors.New("two factor auth has not been set up")

type TwoFactorRepository interface {
	SaveTwoFactorSecret(ctx context.Context, userID int64, secret string) error
	GetTwoFactorSecret(ctx context.Context, userID int64) (string, error)
	EnableTwoFactor(ctx context.Context, userID int64) error
	DisableTwoFactor(ctx context.Context, userID int64) error
}

type twoFactorRepository struct {
	db *sql.DB
}

func NewTwoFactorRepository(db *sql.DB) TwoFactorRepository {
	return &twoFactorRepository{
		db: db,
	}
}

// SaveTwoFactorSecret stores a pending secret; the factor stays off until enabled.
func (r *twoFactorRepository) SaveTwoFactorSecret(ctx context.Context, userID int64, secret string) error {
	query := `
		UPDATE users
		SET totp_secret = $1
		WHERE id = $2 AND two_factor_enabled = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, secret, userID)
	if err != nil {
		return fmt.Errorf("could not save two-factor secret: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUser2FAAlreadyEnabled
	}
	return nil
}

func (r *twoFactorRepository) GetTwoFactorSecret(ctx context.Context, userID int64) (string, error) {
	var secret sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT totp_secret FROM users WHERE id = $1`, userID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("could not read two-factor secret: %w", err)
	}
	if !secret.Valid || secret.String == "" {
		return "", ErrNoTwoFactorSecret
	}
	return secret.String, nil
}

func (r *twoFactorRepository) EnableTwoFactor(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET two_factor_enabled = TRUE
		WHERE id = $1 AND totp_secret IS NOT NULL
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("could not enable two-factor authentication: %w", err)
	}
	return nil
}

func (r *twoFactorRepository) DisableTwoFactor(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET two_factor_enabled = FALSE, totp_secret = NULL
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("could not disable two-factor authentication: %w", err)
	}
	return nil
}
