// Package testutil starts throwaway PostgreSQL instances for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	database "github.com/sebuszqo/HomeBudget/db"
)

const postgresImage = "postgres:16-alpine"

// StartPostgres runs a migrated PostgreSQL container and returns a pool connected to it.
// The test is skipped under -short or when no container runtime is reachable.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()
	dsn := StartPostgresDSN(t)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(context.Background()))
	return db
}

// StartPostgresDSN is StartPostgres for callers that open their own connections.
func StartPostgresDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("homebudget"),
		postgres.WithUsername("budget"),
		postgres.WithPassword("budget"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "could not start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(dsn), "could not run migrations")
	return dsn
}

// CreateUser inserts a user row directly and returns its id.
func CreateUser(t *testing.T, db *sql.DB, username, balance string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(
		`INSERT INTO users (username, password_hash, balance) VALUES ($1, 'x', $2) RETURNING id`,
		username, balance,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateCategory inserts a category; ownerID 0 creates a global one.
func CreateCategory(t *testing.T, db *sql.DB, name string, ownerID int64) int64 {
	t.Helper()
	var owner any
	if ownerID != 0 {
		owner = ownerID
	}
	var id int64
	err := db.QueryRow(`INSERT INTO categories (name, user_id) VALUES ($1, $2) RETURNING id`, name, owner).Scan(&id)
	require.NoError(t, err)
	return id
}
