// Package server is the local HTTP bridge the browser UI talks to. It exposes
// the copilot façade, the message history and runtime messaging as a small
// JSON and server-sent events API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/sqlcopilot/core/copilot"
	"github.com/leofalp/sqlcopilot/core/history"
	"github.com/leofalp/sqlcopilot/core/messaging"
	"github.com/leofalp/sqlcopilot/providers/observability"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	manager  *copilot.Manager
	history  *history.History
	hub      *messaging.Hub
	observer observability.Provider
	gatherer prometheus.Gatherer

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithObserver traces every request and counts responses by route.
func WithObserver(observer observability.Provider) Option {
	return func(s *Server) {
		s.observer = observer
	}
}

// WithMetrics serves gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

func New(manager *copilot.Manager, messages *history.History, hub *messaging.Hub, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		history: messages,
		hub:     hub,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	if s.observer != nil {
		s.engine.Use(observe(s.observer))
	}
	s.RegisterRoutes(s.engine)

	return s
}

// Handler returns the router, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Config
		api.GET("/config", s.GetConfig)
		api.POST("/config", s.SaveConfig)
		api.POST("/config/validate", s.ValidateConfig)

		// Generation
		api.POST("/generate", s.Generate)
		api.POST("/generate/stream", s.GenerateStream)

		// History
		api.GET("/messages", s.ListMessages)
		api.DELETE("/messages", s.ClearMessages)

		// Runtime messaging
		api.POST("/runtime/message", s.DispatchMessage)
		api.POST("/runtime/command", s.RunCommand)
		api.GET("/runtime/events", s.Events)
	}

	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
