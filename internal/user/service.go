package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

const (
	maxUsernameLength = 50
	bcryptCost        = 12
)

var (
	ErrUsernameLength = fmt.Errorf("username must be between 1 and %d characters", maxUsernameLength)
	ErrEmptyPassword  = errors.New("password must not be empty")
	ErrUsernameTaken  = errors.New("username already registered")
	ErrInvalidAmount  = errors.New("amount is out of range")
)

var maxAdjustment = decimal.New(1, 10)

type User struct {
	ID               int64           `json:"id"`
	Username         string          `json:"username"`
	PasswordHash     string          `json:"-"`
	Balance          decimal.Decimal `json:"balance"`
	TwoFactorEnabled bool            `json:"two_factor_enabled"`
	TOTPSecret       string          `json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
}

type Service interface {
	Register(ctx context.Context, username, password string) (*User, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (*User, error)
}

type service struct {
	repo            Repository
	startingBalance decimal.Decimal
}

func NewUserService(repo Repository, startingBalance decimal.Decimal) Service {
	return &service{
		repo:            repo,
		startingBalance: startingBalance.Round(2),
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func DoPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func (s *service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n == 0 || n > maxUsernameLength {
		return nil, ErrUsernameLength
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	_, err := s.repo.getUserByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      s.startingBalance,
	}
	if err := s.repo.createUser(ctx, user); err != nil {
		return nil, err
	}

	logger(ctx).InfoContext(ctx, "user registered", log.FieldOperation, log.OpCreate, log.FieldUserID, user.ID)
	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.getUserByID(ctx, userID)
}

func (s *service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.getUserByUsername(ctx, username)
}

// AdjustBalance adds a signed amount to the balance; the result may not go below zero.
func (s *service) AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (*User, error) {
	if err := domain.CheckAmountScale(delta); err != nil {
		return nil, ErrInvalidAmount
	}
	delta = delta.Round(2)
	if delta.Abs().GreaterThanOrEqual(maxAdjustment) {
		return nil, ErrInvalidAmount
	}

	user, err := s.repo.getUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance, err := s.repo.adjustBalance(ctx, userID, delta)
	if err != nil {
		return nil, err
	}
	user.Balance = balance

	logger(ctx).InfoContext(ctx, "balance adjusted", log.FieldOperation, log.OpAdjust,
		log.FieldUserID, userID, log.FieldAmount, delta.StringFixed(2), log.FieldBalance, balance.StringFixed(2))
	return user, nil
}

func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentUser)
}
