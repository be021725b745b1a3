// File: internal/server/server.go
// Package server hosts the HTTP boundary of the tool server: one command
// endpoint dispatching to the tool registry, a health check, and an optional
// Postgres-backed run archive.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/config"
	"github.com/xkilldash9x/linkscout/internal/tools"
)

// Server is the HTTP tool server.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	dbPool     *pgxpool.Pool
	httpServer *http.Server
	handlers   *Handlers
}

// NewServer wires the server from configuration and an assembled toolset.
// The database is optional: without database.url the run archive is disabled
// and every tool still works.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, toolset *tools.Toolset) (*Server, error) {
	logger = logger.Named("server")

	var pool *pgxpool.Pool
	if cfg.Database.URL == "" {
		logger.Warn("Database URL is not set. Proceeding without run archive.")
	} else {
		initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		var err error
		pool, err = pgxpool.New(initCtx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		if err := pool.Ping(initCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established.")
	}

	var archivePool DBPool
	if pool != nil {
		archivePool = pool
	}
	archive := NewArchiveService(archivePool, logger)
	handlers := NewHandlers(logger, toolset.Registry(), archive, cfg.Server.MaxInvocations)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		dbPool:   pool,
		handlers: handlers,
	}, nil
}

// Router assembles the chi router with the standard middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Tool invocations drive a real browser; give them room to finish.
	r.Use(middleware.Timeout(10 * time.Minute))

	s.handlers.RegisterRoutes(r)
	return r
}

// Start runs the HTTP listener until ctx is canceled, then shuts down
// gracefully and releases the database pool.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Server.Listen,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Tool server starting.", zap.String("address", s.cfg.Server.Listen))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.closeDB()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down gracefully.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error.", zap.Error(err))
	}
	s.closeDB()

	<-errCh
	s.logger.Info("Tool server stopped.")
	return nil
}

func (s *Server) closeDB() {
	if s.dbPool != nil {
		s.logger.Info("Closing database connections.")
		s.dbPool.Close()
	}
}
