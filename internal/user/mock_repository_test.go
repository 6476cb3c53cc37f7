package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
)

type mockRepository struct {
	mu         sync.Mutex
	users      map[int64]*User
	nextID     int64
	shouldFail bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[int64]*User{}}
}

var errRepository = errors.New("repository error")

func (m *mockRepository) createUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errRepository
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockRepository) getUserByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errRepository
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *u
	return &found, nil
}

func (m *mockRepository) getUserByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errRepository
	}
	for _, u := range m.users {
		if u.Username == username {
			found := *u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) adjustBalance(_ context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return decimal.Zero, ErrUserNotFound
	}
	balance, err := domain.ApplyDelta(u.Balance, delta)
	if err != nil {
		return decimal.Zero, err
	}
	u.Balance = balance
	return balance, nil
}
