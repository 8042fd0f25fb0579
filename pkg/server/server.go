// Package server provides the public entry point for initializing the
// Trailhead agent server: config, telemetry, the model client, the turn
// runner, sessions, and the HTTP router.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/trailhead-ai/trailhead/internal/api"
	"github.com/trailhead-ai/trailhead/internal/api/handlers"
	"github.com/trailhead-ai/trailhead/internal/config"
	"github.com/trailhead-ai/trailhead/internal/llm"
	"github.com/trailhead-ai/trailhead/internal/runtime"
	"github.com/trailhead-ai/trailhead/internal/sessions"
	"github.com/trailhead-ai/trailhead/internal/telemetry"
	"github.com/trailhead-ai/trailhead/internal/turn"
)

// Server holds the initialized Trailhead agent server.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Config is the loaded server configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the server with an explicit configuration.
func NewWithConfig(_ context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	client := llm.New(cfg.Model)
	runner := turn.NewRunner(runtime.NewLoop(client), cfg)
	store := sessions.NewStore()

	log.Info().
		Str("driver", cfg.Model.Driver).
		Str("model", cfg.Model.Model).
		Msg("turn runner initialized")

	h := handlers.New(runner, store)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
