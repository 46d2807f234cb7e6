// Package server exposes the build service over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/xlpack-go/internal/config"
	"github.com/ukaji3/xlpack-go/internal/metrics"
	"github.com/ukaji3/xlpack-go/internal/service"
)

// Server is the HTTP server.
type Server struct {
	router *gin.Engine
	api    *Handler
	log    *slog.Logger
}

// NewServer creates a server. m may be nil, in which case /metrics is not
// served.
func NewServer(cfg config.ServerConfig, builder *service.Builder, m *metrics.Metrics, version string, log *slog.Logger) *Server {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		router: gin.New(),
		api:    NewHandler(builder, version),
		log:    log.With("component", "server"),
	}
	s.setupRoutes(m)
	return s
}

func (s *Server) setupRoutes(m *metrics.Metrics) {
	s.router.Use(gin.Recovery(), s.requestLogger())

	api := s.router.Group("/api")
	{
		s.api.RegisterRoutes(api)
	}

	if m != nil {
		s.router.GET("/metrics", gin.WrapH(m.Handler()))
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
