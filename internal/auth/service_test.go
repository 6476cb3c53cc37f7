package auth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fixture struct {
	users    *MockUserService
	jwt      *JWTManager
	sessions *SessionManager
	service  Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newMockUserService()
	jwtManager, err := NewJWTManager(testSecret)
	require.NoError(t, err)
	sessions := NewSessionManager()
	svc := NewAuthService(&MockTwoFactorRepository{users: users}, users, sessions, jwtManager, NewAuthenticator("HomeBudget"), time.Hour)
	return &fixture{users: users, jwt: jwtManager, sessions: sessions, service: svc}
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

type AuthServiceSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()
	s.f.users.add(1, "alice", "pw1")
}

func (s *AuthServiceSuite) enableTwoFactor() string {
	uri, err := s.f.service.SetupTwoFactor(s.ctx, 1)
	s.Require().NoError(err)
	parsed, err := url.Parse(uri)
	s.Require().NoError(err)
	secret := parsed.Query().Get("secret")
	s.Require().NotEmpty(secret)
	s.Require().NoError(s.f.service.EnableTwoFactor(s.ctx, 1, currentCode(s.T(), secret)))
	return secret
}

func (s *AuthServiceSuite) TestLoginIssuesToken() {
	result, err := s.f.service.Login(s.ctx, "alice", "pw1", "")
	s.Require().NoError(err)
	s.False(result.TwoFactorRequired)

	userID, err := s.f.jwt.ValidateAccessToken(result.AccessToken)
	s.Require().NoError(err)
	s.Equal(int64(1), userID)
}

func (s *AuthServiceSuite) TestLoginRejectsBadCredentials() {
	_, err := s.f.service.Login(s.ctx, "alice", "wrong", "")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.f.service.Login(s.ctx, "nobody", "pw1", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceSuite) TestLoginSurfacesStorageFailure() {
	s.f.users.shouldFail = true
	_, err := s.f.service.Login(s.ctx, "alice", "pw1", "")
	s.ErrorIs(err, ErrInternalError)
}

func (s *AuthServiceSuite) TestSetupReturnsOTPURI() {
	uri, err := s.f.service.SetupTwoFactor(s.ctx, 1)
	s.Require().NoError(err)
	s.True(strings.HasPrefix(uri, "otpauth://totp/"))
	s.Contains(uri, "issuer=HomeBudget")

	u, err := s.f.users.GetUserByID(s.ctx, 1)
	s.Require().NoError(err)
	s.False(u.TwoFactorEnabled)
}

func (s *AuthServiceSuite) TestEnableRequiresValidCode() {
	_, err := s.f.service.SetupTwoFactor(s.ctx, 1)
	s.Require().NoError(err)

	err = s.f.service.EnableTwoFactor(s.ctx, 1, "000000x")
	s.ErrorIs(err, ErrInvalid2FACode)
}

func (s *AuthServiceSuite) TestEnableWithoutSetup() {
	err := s.f.service.EnableTwoFactor(s.ctx, 1, "123456")
	s.ErrorIs(err, ErrNoTwoFactorSecret)
}

func (s *AuthServiceSuite) TestTwoFactorChallengeFlow() {
	secret := s.enableTwoFactor()

	result, err := s.f.service.Login(s.ctx, "alice", "pw1", "")
	s.Require().NoError(err)
	s.True(result.TwoFactorRequired)
	s.Empty(result.AccessToken)
	s.NotEmpty(result.SessionToken)

	token, err := s.f.service.VerifyTwoFactor(s.ctx, result.SessionToken, currentCode(s.T(), secret))
	s.Require().NoError(err)
	userID, err := s.f.jwt.ValidateAccessToken(token)
	s.Require().NoError(err)
	s.Equal(int64(1), userID)

	_, err = s.f.service.VerifyTwoFactor(s.ctx, result.SessionToken, currentCode(s.T(), secret))
	s.ErrorIs(err, ErrInvalidSessionToken)
}

func (s *AuthServiceSuite) TestTwoFactorInlineCode() {
	secret := s.enableTwoFactor()

	_, err := s.f.service.Login(s.ctx, "alice", "pw1", "12345x")
	s.ErrorIs(err, ErrInvalid2FACode)

	result, err := s.f.service.Login(s.ctx, "alice", "pw1", currentCode(s.T(), secret))
	s.Require().NoError(err)
	s.NotEmpty(result.AccessToken)
}

func (s *AuthServiceSuite) TestSetupTwiceIsRejectedOnceEnabled() {
	s.enableTwoFactor()

	_, err := s.f.service.SetupTwoFactor(s.ctx, 1)
	s.ErrorIs(err, ErrUser2FAAlreadyEnabled)
}

func (s *AuthServiceSuite) TestDisableTwoFactor() {
	err := s.f.service.DisableTwoFactor(s.ctx, 1, "123456")
	s.ErrorIs(err, ErrUser2FANotEnabled)

	secret := s.enableTwoFactor()
	s.ErrorIs(s.f.service.DisableTwoFactor(s.ctx, 1, "12345x"), ErrInvalid2FACode)
	s.Require().NoError(s.f.service.DisableTwoFactor(s.ctx, 1, currentCode(s.T(), secret)))

	result, err := s.f.service.Login(s.ctx, "alice", "pw1", "")
	s.Require().NoError(err)
	s.False(result.TwoFactorRequired)
}

func TestAuthenticatorRejectsEmptyInput(t *testing.T) {
	a := NewAuthenticator("HomeBudget")
	assert.False(t, a.VerifyCode("", "123456"))
	assert.False(t, a.VerifyCode("JBSWY3DPEHPK3PXP", ""))
}
