package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidSessionToken = errors.New("session token is invalid")
	ErrExpiredSessionToken = errors.New("session token is expired")
)

const defaultSessionTokenDuration = 5 * time.Minute

type SessionManagerInterface interface {
	GenerateSessionToken(userID int64, duration time.Duration) (string, error)
	// ConsumeSessionToken returns the user behind the token and invalidates it.
	ConsumeSessionToken(sessionToken string) (int64, error)
	RemoveExpired() int
}

type SessionToken struct {
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

type SessionManager struct {
	mu     sync.Mutex
	tokens map[string]SessionToken
	now    func() time.Time
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		tokens: make(map[string]SessionToken),
		now:    time.Now,
	}
}

func (sm *SessionManager) GenerateSessionToken(userID int64, duration time.Duration) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	sm.mu.Lock()
	defer sm.mu.Unlock()
	now := sm.now()
	sm.tokens[token] = SessionToken{
		UserID:    userID,
		ExpiresAt: now.Add(duration),
		CreatedAt: now,
	}
	return token, nil
}

func (sm *SessionManager) ConsumeSessionToken(sessionToken string) (int64, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	token, exists := sm.tokens[sessionToken]
	if !exists {
		return 0, ErrInvalidSessionToken
	}
	delete(sm.tokens, sessionToken)

	if sm.now().After(token.ExpiresAt) {
		return 0, ErrExpiredSessionToken
	}
	return token.UserID, nil
}

// RemoveExpired drops tokens past their expiry and returns how many were removed.
func (sm *SessionManager) RemoveExpired() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	removed := 0
	now := sm.now()
	for token, session := range sm.tokens {
		if now.After(session.ExpiresAt) {
			delete(sm.tokens, token)
			removed++
		}
	}
	return removed
}

func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.tokens)
}
