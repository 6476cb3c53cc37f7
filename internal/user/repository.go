package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

const uniqueViolation = "23505"

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	createUser(ctx context.Context, user *User) error
	getUserByID(ctx context.Context, id int64) (*User, error)
	getUserByUsername(ctx context.Context, username string) (*User, error)
	adjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `id, username, password_hash, balance, two_factor_enabled, totp_secret, created_at`

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, password_hash, balance)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
	`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.Balance).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *userRepository) getUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) getUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user   User
		secret sql.NullString
	)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Balance, &user.TwoFactorEnabled, &secret, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	user.TOTPSecret = secret.String
	return &user, nil
}

type rollbacker interface {
	Rollback() error
}

func safeRollback(ctx context.Context, tx rollbacker) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger(ctx).ErrorContext(ctx, "error during transaction rollback", log.FieldError, err)
	}
}

// adjustBalance applies delta under a row lock and returns the new balance.
func (r *userRepository) adjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (balance decimal.Decimal, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			safeRollback(ctx, tx)
			return
		}
		err = tx.Commit()
	}()

	var current decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("could not lock balance: %w", err)
	}

	balance, err = domain.ApplyDelta(current, delta)
	if err != nil {
		return decimal.Zero, err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, balance, userID); err != nil {
		return decimal.Zero, fmt.Errorf("could not update balance: %w", err)
	}
	return balance, nil
}
