// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihandler "github.com/jtrask/folio/internal/api/handler/api"
	"github.com/jtrask/folio/internal/api/job"
	"github.com/jtrask/folio/internal/api/middleware"
	"github.com/jtrask/folio/internal/auth"
	"github.com/jtrask/folio/internal/chart"
	"github.com/jtrask/folio/internal/ledger"
	"github.com/jtrask/folio/internal/metrics"
	"github.com/jtrask/folio/internal/pricedata"
)

// Server represents the folio HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	AuthEnabled bool
	MetricsPath string
	ChartOpts   chart.Options
}

// Dependencies holds the wired components the server serves.
type Dependencies struct {
	Ledger   *ledger.Store
	Prices   pricedata.Repository
	Resolver *pricedata.Resolver
	Tokens   *auth.Store
	Jobs     *job.Store
	Metrics  *metrics.Registry
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)
	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	txHandler := apihandler.NewTransactionsHandler(deps.Ledger, deps.Prices, s.logger)
	portfolio := apihandler.NewPortfolioHandler(deps.Ledger, deps.Prices, deps.Resolver, deps.Metrics, s.logger)
	charts := apihandler.NewChartHandler(deps.Jobs, deps.Ledger, deps.Prices, deps.Resolver, cfg.ChartOpts, deps.Metrics, s.logger)
	tokens := apihandler.NewTokensHandler(deps.Tokens, s.logger)

	authed := middleware.TokenAuth(deps.Tokens, cfg.AuthEnabled)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireAdmin(cfg.AuthEnabled)(h))
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.Handle("GET /api/transactions", authed(http.HandlerFunc(txHandler.List)))
	s.mux.Handle("POST /api/transactions", authed(http.HandlerFunc(txHandler.Append)))
	s.mux.Handle("POST /api/transactions/generate", authed(http.HandlerFunc(txHandler.Generate)))

	s.mux.Handle("POST /api/replay", authed(http.HandlerFunc(portfolio.Replay)))
	s.mux.Handle("GET /api/portfolio/daily", authed(http.HandlerFunc(portfolio.Daily)))
	s.mux.Handle("GET /api/portfolio/summary", authed(http.HandlerFunc(portfolio.Summary)))

	s.mux.Handle("POST /api/charts", authed(http.HandlerFunc(charts.Create)))
	s.mux.Handle("GET /api/jobs/{id}", authed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		charts.GetStatus(w, r, r.PathValue("id"))
	})))

	s.mux.Handle("GET /api/admin/tokens", admin(tokens.List))
	s.mux.Handle("POST /api/admin/tokens", admin(tokens.Issue))
	s.mux.Handle("DELETE /api/admin/tokens/{token}", admin(func(w http.ResponseWriter, r *http.Request) {
		tokens.Revoke(w, r, r.PathValue("token"))
	}))

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath,
			promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	if deps.Metrics != nil {
		s.httpServer.Handler = metrics.HTTPMiddleware(deps.Metrics)(s.mux)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
