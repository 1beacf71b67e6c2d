// Package api exposes the HTTP surface of the newsletter service: intake,
// confirmation, and health check.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/postmark"
	"github.com/ignite/newsletter/internal/subscriptions"
)

// Server represents the API server.
type Server struct {
	config  config.ApplicationSettings
	handler http.Handler
	server  *http.Server
}

// NewServer wires handlers to their collaborators and builds the router.
// The store and email client are injected here, never reached through
// globals, so tests can substitute their own.
func NewServer(cfg config.ApplicationSettings, store *subscriptions.Store, emailClient *postmark.Client) *Server {
	handlers := NewHandlers(store, emailClient, cfg.BaseURL)
	router := SetupRoutes(handlers)

	return &Server{
		config:  cfg,
		handler: router,
	}
}

// ListenAndServe starts the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.config.Addr(),
		Handler: s.handler,
		// Form bodies are tiny; anything slower than this is a stuck client.
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
