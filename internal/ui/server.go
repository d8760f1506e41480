// Package ui exposes the analyses as a JSON HTTP API. The dataset is
// materialized once at startup and held in memory; every request recomputes
// its analysis from the same read-only tables, so handlers need no locking.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/storesight-labs/storesight/pkg/retail"
)

// Server is the HTTP API server.
type Server struct {
	dataset           *retail.Dataset
	port              int
	evalDate          time.Time
	lowStockThreshold int
	seed              uint64
	trees             int
	logger            *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Dataset           *retail.Dataset
	Port              int
	EvalDate          time.Time
	LowStockThreshold int
	Seed              uint64
	Trees             int
	Logger            *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		dataset:           cfg.Dataset,
		port:              cfg.Port,
		evalDate:          cfg.EvalDate,
		lowStockThreshold: cfg.LowStockThreshold,
		seed:              cfg.Seed,
		trees:             cfg.Trees,
		logger:            logger,
	}
}

// Routes returns the configured router.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)
		r.Get("/correlation", s.handleCorrelation)
		r.Get("/opportunities", s.handleOpportunities)
		r.Get("/simulation", s.handleSimulation)
		r.Get("/predictions", s.handlePredictions)
		r.Get("/promotions", s.handlePromotions)
	})

	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
