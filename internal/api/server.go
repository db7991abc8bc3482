// Package api exposes the editing surface over localhost HTTP. It is
// the thin event wiring a UI would otherwise provide: timeline
// mutation, export control and artifact download.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"clipforge/internal/exporter"
	"clipforge/internal/media"
	"clipforge/internal/preview"
	"clipforge/internal/timeline"
)

// Version reported by the health endpoint.
const Version = "0.1.0"

// ServerConfig wires the handlers to the session state.
type ServerConfig struct {
	Port     int
	Library  *media.Library
	Timeline *timeline.Timeline
	Exporter *exporter.Exporter
	Preview  *preview.Player
	Logger   zerolog.Logger

	// editMu serializes all timeline and library mutation, standing in
	// for the single UI thread the model assumes. Export snapshots are
	// taken under the same lock so a run never observes a half-applied
	// edit.
	editMu sync.Mutex
}

// Server is the localhost HTTP front end.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer creates the HTTP server bound to loopback
func NewServer(cfg *ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger.With().Str("component", "api").Logger(),
	}
}

// Start blocks serving requests until Shutdown
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
