package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davidbz/howl/internal/config"
	"github.com/davidbz/howl/internal/httpserver/middleware"
	"github.com/davidbz/howl/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config      config.ServerConfig
	handler     *Handler
	metrics     *observability.Metrics
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates a new HTTP server (DI constructor).
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	metrics *observability.Metrics,
	middlewares middleware.Middleware,
) *Server {
	return &Server{
		config:      *cfg,
		handler:     handler,
		metrics:     metrics,
		middlewares: middlewares,
		srv:         nil,
	}
}

// Routes returns the route table wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/usage", s.handler.HandleRecordUsage)
	mux.HandleFunc("POST /v1/quotes", s.handler.HandleQuote)
	mux.HandleFunc("POST /v1/settlements", s.handler.HandleSettle)
	mux.HandleFunc("POST /v1/wallets/{userID}/credits", s.handler.HandleGrantCredits)
	mux.HandleFunc("GET /v1/wallets/{userID}", s.handler.HandleGetWallet)
	mux.HandleFunc("GET /v1/wallets/{userID}/summaries/{provider}", s.handler.HandleGetSummary)
	mux.HandleFunc("GET /v1/developers/{developerID}/wallet", s.handler.HandleGetDeveloperWallet)
	mux.HandleFunc("PUT /v1/listings/{listingID}", s.handler.HandlePutListing)
	mux.HandleFunc("GET /v1/listings/{listingID}", s.handler.HandleGetListing)
	mux.HandleFunc("GET /health", s.handler.HandleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	if s.middlewares == nil {
		return mux
	}
	return s.middlewares(mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	ctx := context.Background()
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if s.srv == nil {
		return nil
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
