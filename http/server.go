// Package http serves the prediction form, its JSON API and metrics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server HTTP server
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig server configuration
type ServerConfig struct {
	Port         int
	Timeout      time.Duration
	MaxBodyBytes int64
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         8501,
		Timeout:      30 * time.Second,
		MaxBodyBytes: 1 << 16,
	}
}

// NewServer wires every route behind the middleware chain.
func NewServer(config ServerConfig, api *API, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	RegisterHandlers(mux, api)
	RegisterPredictHandlers(mux, api)
	mux.Handle("GET /metrics", promhttp.Handler())

	chain := Chain(
		RecoveryMiddleware(logger), // outermost, catches panics
		LoggerMiddleware(logger),   // request id + access log
		SecurityHeadersMiddleware,  // security headers
		TimeoutMiddleware(config.Timeout),
		RequestSizeMiddleware(config.MaxBodyBytes),
	)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           chain(mux),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       config.Timeout,
			WriteTimeout:      config.Timeout + 5*time.Second, // room for the timeout response
			IdleTimeout:       120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// Start blocks serving until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting at most five seconds for requests.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler exposes the wrapped mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
