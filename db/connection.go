package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sebuszqo/HomeBudget/internal/config"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

const pingTimeout = 5 * time.Second

// DBService owns the shared *sql.DB pool backed by the pgx stdlib driver.
type DBService struct {
	DB     *sql.DB
	logger *log.Logger
}

// NewDBService opens the pool described by cfg and verifies it with a ping.
func NewDBService(cfg config.DBConfig, logger *log.Logger) (*DBService, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("missing DB_CONNECTION_STRING")
	}

	db, err := sql.Open("pgx", cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	return &DBService{DB: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

// Health pings the database and reports pool statistics.
func (s *DBService) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := s.DB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.DB.Stats()
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)
	return stats
}

func (s *DBService) Close() error {
	s.logger.Info("Closing database connection")
	return s.DB.Close()
}
