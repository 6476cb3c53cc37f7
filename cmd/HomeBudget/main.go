package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	database "github.com/sebuszqo/HomeBudget/db"
	"github.com/sebuszqo/HomeBudget/internal/app"
	"github.com/sebuszqo/HomeBudget/internal/auth"
	"github.com/sebuszqo/HomeBudget/internal/config"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

const readHeaderTimeout = 10 * time.Second

type Server struct {
	router   *http.ServeMux
	handlers app.Handlers
	db       *database.DBService
}

func NewServer(handlers app.Handlers, db *database.DBService) *Server {
	return &Server{
		handlers: handlers,
		db:       db,
		router:   http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	app.RespondError(w, http.StatusNotFound, "Path not found")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	app.RespondJSON(w, status, health)
}

func (s *Server) RegisterRoutes() {
	protect := s.handlers.AuthService.JWTAccessTokenMiddleware()
	router := http.NewServeMux()

	// Public routes
	router.Handle("POST /auth/register", http.HandlerFunc(s.handlers.User.HandleRegister))
	router.Handle("POST /auth/login", http.HandlerFunc(s.handlers.Auth.HandleLogin))
	router.Handle("POST /auth/2fa/verify", http.HandlerFunc(s.handlers.Auth.HandleVerifyTwoFactor))
	router.Handle("GET /ready", http.HandlerFunc(s.handleReady))

	// Profile and two-factor management
	router.Handle("GET /auth/me", protect(http.HandlerFunc(s.handlers.User.HandleGetProfile)))
	router.Handle("PATCH /auth/me/balance", protect(http.HandlerFunc(s.handlers.User.HandleAdjustBalance)))
	router.Handle("POST /auth/2fa/setup", protect(http.HandlerFunc(s.handlers.Auth.HandleSetupTwoFactor)))
	router.Handle("POST /auth/2fa/enable", protect(http.HandlerFunc(s.handlers.Auth.HandleEnableTwoFactor)))
	router.Handle("DELETE /auth/2fa", protect(http.HandlerFunc(s.handlers.Auth.HandleDisableTwoFactor)))

	// CATEGORIES API
	router.Handle("GET /categories/{$}", protect(http.HandlerFunc(s.handlers.Category.GetCategories)))
	router.Handle("POST /categories/{$}", protect(http.HandlerFunc(s.handlers.Category.CreateCategory)))
	router.Handle("DELETE /categories/{id}", protect(http.HandlerFunc(s.handlers.Category.DeleteCategory)))

	// EXPENSES API
	router.Handle("GET /expenses/{$}", protect(http.HandlerFunc(s.handlers.Expense.GetExpenses)))
	router.Handle("POST /expenses/{$}", protect(http.HandlerFunc(s.handlers.Expense.CreateExpense)))
	router.Handle("GET /expenses/summary", protect(http.HandlerFunc(s.handlers.Expense.GetSummary)))
	router.Handle("GET /expenses/export", protect(http.HandlerFunc(s.handlers.Expense.ExportExpenses)))
	router.Handle("DELETE /expenses/{id}", protect(http.HandlerFunc(s.handlers.Expense.DeleteExpense)))

	router.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = router
}

// Handler wraps the router with request ids and access logging.
func (s *Server) Handler(logger *log.Logger) http.Handler {
	return log.RequestIDMiddleware(logger)(log.RequestLoggingMiddleware(s.router))
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "homebudget: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{Level: level, Format: cfg.LogFormat, Component: log.ComponentApp})
	log.SetDefault(logger)

	if err := database.RunMigrations(cfg.DB.ConnectionString); err != nil {
		return err
	}
	logger.Info("database migrations applied", log.FieldOperation, log.OpMigrate)

	container, err := app.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	if err := container.Provide(NewServer); err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return container.Invoke(func(server *Server, db *database.DBService, sessions *auth.SessionManager) error {
		defer db.Close()

		created, err := database.SeedPresetCategories(ctx, db.DB, cfg.PresetCategories)
		if err != nil {
			return err
		}
		logger.Info("preset categories seeded", log.FieldOperation, log.OpSeed, log.FieldCount, created)

		scheduler, err := app.StartSessionCleanup(sessions, cfg.SessionCleanupInterval, logger)
		if err != nil {
			return err
		}
		defer func() { <-scheduler.Stop().Done() }()

		server.RegisterRoutes()
		return serve(ctx, cfg, server.Handler(logger), logger)
	})
}

// serve runs the API (and pprof, when configured) until ctx is cancelled,
// then drains in-flight requests within the shutdown timeout.
func serve(ctx context.Context, cfg *config.Config, handler http.Handler, logger *log.Logger) error {
	servers := []*http.Server{{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}}
	if cfg.PprofAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.PprofAddr,
			Handler:           http.DefaultServeMux,
			ReadHeaderTimeout: readHeaderTimeout,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("Server starting", log.FieldOperation, log.OpStartup, "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
