package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipepdf/config"
	"github.com/pageza/recipepdf/internal/router"
)

// shutdownTimeout bounds how long in-flight requests may finish on shutdown
const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// NewServer creates a new server instance
func NewServer(cfg config.ServerConfig, routes router.Options) *Server {
	logger := routes.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	routes.Logger = logger
	if len(routes.CORSOrigins) == 0 {
		routes.CORSOrigins = cfg.CORSOrigins
	}
	if routes.API.RequestTimeout == 0 {
		routes.API.RequestTimeout = cfg.RequestTimeout
	}

	engine := router.SetupRouter(routes)
	return &Server{
		router: engine,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
