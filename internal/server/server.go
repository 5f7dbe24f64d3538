// Package server assembles the HTTP API: routing, middleware and the
// server lifecycle.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vidwarden/vidwarden/internal/server/handlers"
	"github.com/vidwarden/vidwarden/internal/server/middleware"
)

// Deps are the collaborators the HTTP layer routes to.
type Deps struct {
	Logger  *slog.Logger
	Gateway GatewayService
	Events  handlers.EventReader
	Creds   handlers.CredentialChecker
	Version string
}

// GatewayService is the full six-operation gateway surface.
type GatewayService interface {
	handlers.VideoGateway
	handlers.CommentGateway
}

// Router builds the API handler with logging and panic recovery applied.
func Router(deps Deps) http.Handler {
	videos := handlers.NewVideoHandler(deps.Logger, deps.Gateway)
	comments := handlers.NewCommentHandler(deps.Logger, deps.Gateway)
	events := handlers.NewEventsHandler(deps.Logger, deps.Events)
	health := handlers.NewHealthHandler(deps.Logger, deps.Creds, deps.Version)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/videos/{videoId}", videos.Get)
	mux.HandleFunc("PUT /api/videos/{videoId}", videos.Update)
	mux.HandleFunc("GET /api/videos/{videoId}/comments", comments.List)
	mux.HandleFunc("POST /api/videos/{videoId}/comments", comments.Add)
	mux.HandleFunc("POST /api/videos/{videoId}/comments/{commentId}/reply", comments.Reply)
	mux.HandleFunc("DELETE /api/videos/{videoId}/comments/{commentId}", comments.Delete)
	mux.HandleFunc("GET /api/event-logs", events.List)
	mux.HandleFunc("GET /api/event-logs/stats", events.Stats)
	mux.HandleFunc("GET /api/event-logs/recent/{videoId}", events.Recent)
	mux.HandleFunc("GET /api/health", health.Health)

	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(deps.Logger, []string{"/api/health"})(handler)
	handler = middleware.Recovery(deps.Logger)(handler)
	return handler
}

// Server wraps http.Server with sensible timeouts and graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server listening on addr.
func New(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
