package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/HomeBudget/internal/user"
)

type MockUserService struct {
	mu         sync.Mutex
	users      map[int64]*user.User
	shouldFail bool
}

func newMockUserService() *MockUserService {
	return &MockUserService{users: map[int64]*user.User{}}
}

func (m *MockUserService) add(id int64, username, password string) *user.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &user.User{ID: id, Username: username, PasswordHash: string(hash), Balance: decimal.RequireFromString("1000")}
	m.mu.Lock()
	m.users[id] = u
	m.mu.Unlock()
	return u
}

func (m *MockUserService) Register(context.Context, string, string) (*user.User, error) {
	return nil, errors.New("not used")
}

func (m *MockUserService) GetUserByID(_ context.Context, userID int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockUserService) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errors.New("service error")
	}
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserService) AdjustBalance(context.Context, int64, decimal.Decimal) (*user.User, error) {
	return nil, errors.New("not used")
}

// MockTwoFactorRepository writes straight into the users held by MockUserService.
type MockTwoFactorRepository struct {
	users *MockUserService
}

func (m *MockTwoFactorRepository) SaveTwoFactorSecret(_ context.Context, userID int64, secret string) error {
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	u := m.users.users[userID]
	if u.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}
	u.TOTPSecret = secret
	return nil
}

func (m *MockTwoFactorRepository) GetTwoFactorSecret(_ context.Context, userID int64) (string, error) {
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	u, ok := m.users.users[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	if u.TOTPSecret == "" {
		return "", ErrNoTwoFactorSecret
	}
	return u.TOTPSecret, nil
}

func (m *MockTwoFactorRepository) EnableTwoFactor(_ context.Context, userID int64) error {
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	m.users.users[userID].TwoFactorEnabled = true
	return nil
}

func (m *MockTwoFactorRepository) DisableTwoFactor(_ context.Context, userID int64) error {
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	u := m.users.users[userID]
	u.TwoFactorEnabled = false
	u.TOTPSecret = ""
	return nil
}
