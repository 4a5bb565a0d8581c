package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"vendly/internal/config"
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func New(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  orDefault(cfg.ReadTimeout, 10*time.Second),
			WriteTimeout: orDefault(cfg.WriteTimeout, 10*time.Second),
			IdleTimeout:  orDefault(cfg.IdleTimeout, 30*time.Second),
		},
		logger: logger,
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("addr", s.httpServer.Addr),
		zap.Duration("readTimeout", s.httpServer.ReadTimeout),
		zap.Duration("writeTimeout", s.httpServer.WriteTimeout))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
