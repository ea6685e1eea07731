// Package server provides the HTTP server for the application.
// It handles server lifecycle, API routes, and graceful shutdown.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/api/router"
	"github.com/verustcode/valreport/internal/config"
	"github.com/verustcode/valreport/internal/generation"
	"github.com/verustcode/valreport/internal/generation/recovery"
	"github.com/verustcode/valreport/internal/store"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/logger"
)

// HTTP server timeout configuration
const (
	defaultReadTimeout = 30 * time.Second
	// PDF rendering of large reports can take a while
	defaultWriteTimeout    = 120 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
	defaultStopTimeout     = 5 * time.Second
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	engine     *generation.Engine
	router     *gin.Engine
	store      store.Store
	cleanup    *store.GenerationCleanupService
}

// New creates a new server instance. s may be nil when generation history is disabled.
func New(cfg *config.Config, e *generation.Engine, s store.Store) *Server {
	// Set Gin mode based on debug flag
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	return &Server{
		cfg:    cfg,
		engine: e,
		router: r,
		store:  s,
	}
}

// SetupRoutes configures all routes
func (s *Server) SetupRoutes() {
	deps := router.Dependencies{
		Config: s.cfg,
		Engine: s.engine,
	}
	if s.store != nil {
		deps.Store = s.store
		deps.DBCheck = s.pingStore
	}
	router.Setup(s.router, deps)
}

// pingStore checks the history database connection
func (s *Server) pingStore() error {
	sqlDB, err := s.store.DB().DB()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to get database handle", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "database ping failed", err)
	}
	return nil
}

// Start starts the history cleanup job and the HTTP server
func (s *Server) Start() error {
	if s.store != nil {
		staleAfter := time.Duration(s.cfg.History.StaleAfterMinutes) * time.Minute
		// A failed sweep only leaves stale rows pending
		if _, err := recovery.NewService(s.store, staleAfter).Recover(context.Background()); err != nil {
			logger.Warn("Generation recovery failed", zap.Error(err))
		}
	}

	if s.store != nil && s.cfg.History.RetentionDays > 0 {
		s.cleanup = store.NewGenerationCleanupService(s.store.Generation(),
			s.cfg.History.CleanupSchedule, s.cfg.History.RetentionDays)
		if err := s.cleanup.Start(); err != nil {
			return err
		}
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	logger.Info("Starting HTTP server",
		zap.String("address", s.cfg.Server.Address()),
		zap.Bool("debug", s.cfg.Server.Debug),
		zap.Bool("history", s.store != nil),
		zap.Bool("backend", s.engine.Backend().Enabled()),
	)

	// Start server in goroutine
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	return nil
}

// WaitForShutdown waits for shutdown signal and gracefully stops the server
// First signal triggers graceful shutdown, second signal forces immediate exit
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Received shutdown signal, starting graceful shutdown (press Ctrl+C again to force exit)",
		zap.String("signal", sig.String()))

	go func() {
		sig := <-quit
		logger.Warn("Received second shutdown signal, forcing exit",
			zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// Stop stops the server immediately
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()

	return s.shutdown(ctx)
}

func (s *Server) shutdown(ctx context.Context) error {
	if s.cleanup != nil {
		s.cleanup.Stop()
		s.cleanup = nil
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
