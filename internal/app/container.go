// Package app assembles the object graph shared by the HTTP server and budgetctl.
package app

import (
	"database/sql"
	"time"

	"go.uber.org/dig"

	database "github.com/sebuszqo/HomeBudget/db"
	"github.com/sebuszqo/HomeBudget/internal/auth"
	"github.com/sebuszqo/HomeBudget/internal/config"
	"github.com/sebuszqo/HomeBudget/internal/finance/application"
	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	"github.com/sebuszqo/HomeBudget/internal/finance/infrastructure"
	"github.com/sebuszqo/HomeBudget/internal/finance/interfaces"
	"github.com/sebuszqo/HomeBudget/internal/log"
	"github.com/sebuszqo/HomeBudget/internal/user"
)

// Handlers is everything the router needs.
type Handlers struct {
	dig.In

	Auth        *auth.Handler
	AuthService auth.Service
	User        *user.Handler
	Category    *interfaces.CategoryHandler
	Expense     *interfaces.ExpenseHandler
}

// Build registers every constructor. Nothing is opened until a caller invokes
// something that depends on it, so budgetctl only pays for what it uses.
func Build(cfg *config.Config, logger *log.Logger) (*dig.Container, error) {
	c := dig.New()

	providers := []interface{}{
		func() *config.Config { return cfg },
		func() *log.Logger { return logger },

		func(cfg *config.Config, logger *log.Logger) (*database.DBService, error) {
			return database.NewDBService(cfg.DB, logger)
		},
		func(s *database.DBService) *sql.DB { return s.DB },

		// users
		user.NewUserRepository,
		func(repo user.Repository, cfg *config.Config) user.Service {
			return user.NewUserService(repo, cfg.StartingBalanceAmount())
		},
		user.NewHandler,

		// auth
		auth.NewTwoFactorRepository,
		auth.NewSessionManager,
		func(sm *auth.SessionManager) auth.SessionManagerInterface { return sm },
		func(cfg *config.Config) (auth.JWTManagerInterface, error) {
			jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
			if err != nil {
				return nil, err
			}
			return jwtManager, nil
		},
		func(cfg *config.Config) auth.TwoFactorAuthenticator {
			return auth.NewAuthenticator(cfg.TOTPIssuer)
		},
		func(
			repo auth.TwoFactorRepository,
			users user.Service,
			sessions auth.SessionManagerInterface,
			jwtManager auth.JWTManagerInterface,
			authenticator auth.TwoFactorAuthenticator,
			cfg *config.Config,
		) auth.Service {
			return auth.NewAuthService(repo, users, sessions, jwtManager, authenticator, cfg.AccessTokenTTL)
		},
		auth.NewHandler,

		// finance storage
		func(db *sql.DB) domain.CategoryRepository { return infrastructure.NewCategoryRepository(db) },
		func(db *sql.DB) domain.ExpenseRepository { return infrastructure.NewExpenseRepository(db) },
		func(db *sql.DB) domain.SummaryRepository { return infrastructure.NewSummaryRepository(db) },
		func(db *sql.DB) domain.Ledger { return infrastructure.NewPostgresLedger(db) },

		// finance services
		application.NewCategoryService,
		func(repo domain.ExpenseRepository, ledger domain.Ledger) *application.ExpenseService {
			return application.NewExpenseService(repo, ledger, time.Now)
		},
		func(repo domain.SummaryRepository) *application.SummaryService {
			return application.NewSummaryService(repo, time.Now)
		},

		// finance handlers
		func(svc *application.CategoryService) *interfaces.CategoryHandler {
			return interfaces.NewCategoryHandler(svc, RespondJSON, RespondError)
		},
		func(svc *application.ExpenseService, summaries *application.SummaryService) *interfaces.ExpenseHandler {
			return interfaces.NewExpenseHandler(svc, summaries, RespondJSON, RespondError)
		},
	}

	for _, provider := range providers {
		if err := c.Provide(provider); err != nil {
			return nil, err
		}
	}
	return c, nil
}
