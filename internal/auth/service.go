package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sebuszqo/HomeBudget/internal/log"
	"github.com/sebuszqo/HomeBudget/internal/user"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInternalError         = errors.New("internal Server Error")
	ErrUser2FANotEnabled     = errors.New("two factor auth is not enabled")
	ErrInvalid2FACode        = errors.New("2fa code is invalid")
	ErrUser2FAAlreadyEnabled = errors.New("2fa auth already enabled")
)

// LoginResult carries either an access token or, for two-factor users who
// did not send a code, the session token that completes the login.
type LoginResult struct {
	AccessToken       string
	SessionToken      string
	TwoFactorRequired bool
}

type Service interface {
	Login(ctx context.Context, username, password, otp string) (*LoginResult, error)
	VerifyTwoFactor(ctx context.Context, sessionToken, code string) (string, error)
	SetupTwoFactor(ctx context.Context, userID int64) (string, error)
	EnableTwoFactor(ctx context.Context, userID int64, code string) error
	DisableTwoFactor(ctx context.Context, userID int64, code string) error
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	repo           TwoFactorRepository
	userService    user.Service
	sessionManager SessionManagerInterface
	jwtManager     JWTManagerInterface
	authenticator  TwoFactorAuthenticator
	accessTTL      time.Duration
}

func NewAuthService(repo TwoFactorRepository, userService user.Service, sessionManager SessionManagerInterface, jwtManager JWTManagerInterface, authenticator TwoFactorAuthenticator, accessTTL time.Duration) Service {
	return &service{
		repo:           repo,
		userService:    userService,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		authenticator:  authenticator,
		accessTTL:      accessTTL,
	}
}

func (s *service) Login(ctx context.Context, username, password, otp string) (*LoginResult, error) {
	existingUser, err := s.userService.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !user.DoPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if existingUser.TwoFactorEnabled {
		if otp == "" {
			sessionToken, err := s.sessionManager.GenerateSessionToken(existingUser.ID, defaultSessionTokenDuration)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
			}
			return &LoginResult{SessionToken: sessionToken, TwoFactorRequired: true}, nil
		}
		if !s.authenticator.VerifyCode(existingUser.TOTPSecret, otp) {
			return nil, ErrInvalid2FACode
		}
	}

	token, err := s.issueToken(existingUser.ID)
	if err != nil {
		return nil, err
	}
	logger(ctx).InfoContext(ctx, "user logged in", log.FieldOperation, log.OpLogin, log.FieldUserID, existingUser.ID)
	return &LoginResult{AccessToken: token}, nil
}

func (s *service) issueToken(userID int64) (string, error) {
	token, err := s.jwtManager.GenerateAccessJWT(userID, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return token, nil
}

func (s *service) VerifyTwoFactor(ctx context.Context, sessionToken, code string) (string, error) {
	userID, err := s.sessionManager.ConsumeSessionToken(sessionToken)
	if err != nil {
		return "", err
	}
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !existingUser.TwoFactorEnabled {
		return "", ErrUser2FANotEnabled
	}
	if !s.authenticator.VerifyCode(existingUser.TOTPSecret, code) {
		return "", ErrInvalid2FACode
	}
	return s.issueToken(existingUser.ID)
}

func (s *service) SetupTwoFactor(ctx context.Context, userID int64) (string, error) {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if existingUser.TwoFactorEnabled {
		return "", ErrUser2FAAlreadyEnabled
	}

	otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Username)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if err := s.repo.SaveTwoFactorSecret(ctx, userID, secret); err != nil {
		return "", err
	}
	return otpURI, nil
}

func (s *service) EnableTwoFactor(ctx context.Context, userID int64, code string) error {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		return err
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}
	if err := s.repo.EnableTwoFactor(ctx, userID); err != nil {
		return err
	}
	logger(ctx).InfoContext(ctx, "two-factor authentication enabled", log.FieldUserID, userID)
	return nil
}

func (s *service) DisableTwoFactor(ctx context.Context, userID int64, code string) error {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		return err
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}
	if err := s.repo.DisableTwoFactor(ctx, userID); err != nil {
		return err
	}
	logger(ctx).InfoContext(ctx, "two-factor authentication disabled", log.FieldUserID, userID)
	return nil
}

func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentAuth)
}
