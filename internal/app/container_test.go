package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "github.com/sebuszqo/HomeBudget/db"
	"github.com/sebuszqo/HomeBudget/internal/app"
	"github.com/sebuszqo/HomeBudget/internal/auth"
	"github.com/sebuszqo/HomeBudget/internal/config"
	"github.com/sebuszqo/HomeBudget/internal/log"
	"github.com/sebuszqo/HomeBudget/internal/testutil"
)

func testConfig(dsn string) *config.Config {
	return &config.Config{
		DB: config.DBConfig{
			ConnectionString: dsn,
			MaxOpenConns:     5,
			MaxIdleConns:     1,
			ConnMaxLifetime:  time.Minute,
		},
		JWTSecret:      "container-test-secret-0123",
		AccessTokenTTL: time.Hour,
		TOTPIssuer:     "HomeBudget",
	}
}

func TestBuild_JWTManagerNeedsNoDatabase(t *testing.T) {
	c, err := app.Build(testConfig(""), log.Discard())
	require.NoError(t, err)

	err = c.Invoke(func(m auth.JWTManagerInterface) {
		token, err := m.GenerateAccessJWT(3, time.Minute)
		require.NoError(t, err)
		userID, err := m.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(3), userID)
	})
	assert.NoError(t, err)
}

func TestBuild_ShortSecretFailsOnInvoke(t *testing.T) {
	cfg := testConfig("")
	cfg.JWTSecret = "short"

	c, err := app.Build(cfg, log.Discard())
	require.NoError(t, err)

	err = c.Invoke(func(auth.JWTManagerInterface) {})
	assert.Error(t, err)
}

func TestBuild_WiresHandlersAgainstPostgres(t *testing.T) {
	dsn := testutil.StartPostgresDSN(t)

	c, err := app.Build(testConfig(dsn), log.Discard())
	require.NoError(t, err)

	err = c.Invoke(func(h app.Handlers, db *database.DBService) {
		t.Cleanup(func() { _ = db.Close() })
		assert.NotNil(t, h.Auth)
		assert.NotNil(t, h.AuthService)
		assert.NotNil(t, h.User)
		assert.NotNil(t, h.Category)
		assert.NotNil(t, h.Expense)
	})
	require.NoError(t, err)
}
