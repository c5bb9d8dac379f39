package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"healthpage/internal/config"
	"healthpage/internal/core"
	"healthpage/internal/logger"
	"healthpage/internal/pipeline"
)

// Runner produces a page for a demographic request
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// History exposes recorded runs
type History interface {
	ListRuns(limit int) ([]core.RunRecord, error)
	GetRun(id string) (*core.RunRecord, error)
}

// Server represents the preview HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	runner     Runner
	history    History // optional
	config     config.Server
	log        zerolog.Logger
	started    time.Time
}

// New creates a new HTTP server instance. history may be nil when caching is disabled.
func New(runner Runner, history History, cfg config.Server) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		runner:  runner,
		history: history,
		config:  cfg,
		log:     logger.With("component", "server"),
		started: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.ParseDuration(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: config.ParseDuration(cfg.WriteTimeout, 330*time.Second),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Web routes (HTML pages)
	s.router.Get("/", s.handleFormPage)
	s.router.With(noCache).Post("/generate", s.handleGeneratePage)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerateAPI)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.httpServer.Addr).
		Dur("read_timeout", s.httpServer.ReadTimeout).
		Dur("write_timeout", s.httpServer.WriteTimeout).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
