// Package http exposes the JSON API: authentication, transactions, saving
// goals and periodic analytics reports.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const requestsPerMinute = 60

// Pinger reports storage liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	httpServer   *http.Server
	router       chi.Router
	authService  *auth.Service
	transactions *services.TransactionService
	goals        *services.GoalService
	pinger       Pinger
	limiter      *rateLimiter
	logger       *applog.Logger
}

func NewServer(cfg config.Config, authService *auth.Service, transactions *services.TransactionService, goals *services.GoalService, pinger Pinger, logger *applog.Logger) *Server {
	s := &Server{
		authService:  authService,
		transactions: transactions,
		goals:        goals,
		pinger:       pinger,
		limiter:      newRateLimiter(requestsPerMinute),
		logger:       logger.WithComponent(applog.ComponentHTTP),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(rateLimit(s.limiter))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", s.handleCreateTransaction)
				r.Get("/", s.handleListTransactions)
				r.Get("/all", s.handleListAllTransactions)
				r.Get("/recent", s.handleRecentTransactions)
				r.Get("/totals", s.handleTotalsByCategory)
				r.Get("/category/{category}", s.handleTransactionsByCategory)
				r.Get("/type/{type}", s.handleTransactionsByType)
			})

			r.Get("/analytics/report", s.handleReport)

			r.Route("/saving-goal", func(r chi.Router) {
				r.Post("/", s.handleCreateSavingGoal)
				r.Get("/", s.handleGetSavingGoal)
				r.Put("/{id}", s.handleUpdateSavingGoal)
			})

			r.Route("/saving-category-goals", func(r chi.Router) {
				r.Post("/", s.handleCreateCategoryGoal)
				r.Get("/", s.handleListCategoryGoals)
				r.Put("/{id}", s.handleUpdateCategoryGoal)
			})
		})
	})

	s.router = r
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "ok", nil)
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	respondJSON(w, http.StatusOK, "ready", nil)
}
