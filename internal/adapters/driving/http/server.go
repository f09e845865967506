package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the driving ports the API exposes
type Services struct {
	Auth           driving.AuthService
	User           driving.UserService
	Book           driving.BookService
	Stats          driving.StatsService
	Scrape         driving.ScrapeService
	Recommendation driving.RecommendationService
}

// Infra groups the infrastructure the API reports on or writes to
type Infra struct {
	AccessLog driven.AccessLogStore // optional
	DB        Pinger                // PostgreSQL health check
	Redis     Pinger                // Redis health check (optional)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger

	// Services
	authService           driving.AuthService
	userService           driving.UserService
	bookService           driving.BookService
	statsService          driving.StatsService
	scrapeService         driving.ScrapeService
	recommendationService driving.RecommendationService

	// Infrastructure
	accessLog   driven.AccessLogStore
	db          Pinger
	redisClient Pinger
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, services Services, infra Infra, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:                http.NewServeMux(),
		version:               cfg.Version,
		logger:                logger,
		authService:           services.Auth,
		userService:           services.User,
		bookService:           services.Book,
		statsService:          services.Stats,
		scrapeService:         services.Scrape,
		recommendationService: services.Recommendation,
		accessLog:             infra.AccessLog,
		db:                    infra.DB,
		redisClient:           infra.Redis,
	}

	s.setupRoutes()

	// Outermost first: panics are recovered even inside logging and metrics.
	var h http.Handler = s.router
	h = NewAccessLogMiddleware(s.accessLog, logger).Handler(h)
	h = NewCORSMiddleware(cfg.AllowedOrigins).Handler(h)
	h = NewMetricsMiddleware().Handler(h)
	h = NewLoggingMiddleware(logger).Handler(h)
	h = NewRecoveryMiddleware(logger).Handler(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // scrape and training run inline
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler with every middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// route registers a handler and records its pattern for logs and metrics
func (s *Server) route(pattern string, h http.Handler) {
	s.router.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info := requestInfoFrom(r.Context()); info != nil {
			info.route = pattern
		}
		h.ServeHTTP(w, r)
	}))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Create middleware
	authMiddleware := NewAuthMiddleware(s.authService)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(authMiddleware.RequireAdmin(h))
	}

	// Health endpoints (no auth)
	s.route("GET /{$}", http.HandlerFunc(s.handleHome))
	s.route("GET /health", http.HandlerFunc(s.handleHealth))
	s.route("GET /ready", http.HandlerFunc(s.handleReady))
	s.route("GET /version", http.HandlerFunc(s.handleVersion))

	// Observability and docs (no auth)
	s.route("GET /metrics", promhttp.Handler())
	s.route("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Auth endpoints (public)
	s.route("POST /api/v1/auth/register", http.HandlerFunc(s.handleRegister))
	s.route("POST /api/v1/auth/login", http.HandlerFunc(s.handleLogin))
	s.route("POST /api/v1/auth/refresh", http.HandlerFunc(s.handleRefresh))

	// Auth endpoints (authenticated)
	s.route("POST /api/v1/auth/logout", authed(s.handleLogout))
	s.route("GET /api/v1/me", authed(s.handleGetMe))
	s.route("PUT /api/v1/me/password", authed(s.handleChangePassword))

	// Admin-only user management
	s.route("GET /api/v1/users", admin(s.handleListUsers))
	s.route("POST /api/v1/users", admin(s.handleCreateUser))
	s.route("PUT /api/v1/users/{id}", admin(s.handleUpdateUser))
	s.route("DELETE /api/v1/users/{id}", admin(s.handleDeleteUser))

	// Catalog endpoints (authenticated)
	s.route("GET /api/v1/books/titles", authed(s.handleListTitles))
	s.route("GET /api/v1/books/search", authed(s.handleSearchBooks))
	s.route("GET /api/v1/books/price-range", authed(s.handlePriceRange))
	s.route("GET /api/v1/books/top-rated", authed(s.handleTopRated))
	s.route("GET /api/v1/books/{id}", authed(s.handleGetBook))
	s.route("GET /api/v1/categories", authed(s.handleListCategories))
	s.route("GET /api/v1/genres", authed(s.handleListCategories))

	// Stats endpoints (authenticated)
	s.route("GET /api/v1/stats/overview", authed(s.handleStatsOverview))
	s.route("GET /api/v1/stats/categories", authed(s.handleStatsCategories))

	// Scrape endpoint (admin-only)
	s.route("POST /api/v1/scrape", admin(s.handleScrape))

	// Recommender endpoints
	s.route("POST /api/v1/ml/training-data", admin(s.handleTrain))
	s.route("POST /api/v1/ml/predictions", authed(s.handlePredict))
	s.route("GET /api/v1/ml/user-preferences/{user_id}", authed(s.handleUserPreferences))
	s.route("GET /api/v1/ml/status", authed(s.handleModelStatus))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
