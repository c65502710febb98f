// Package api provides the HTTP REST API for the device catalog.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/importer"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/config"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/logging"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/location"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/manual"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.ServerConfig
	Manuals      config.ManualsConfig
	Logger       *logging.Logger
	DeviceRepo   device.Repository
	LocationRepo location.Repository
	ManualStore  *manual.Store
	Importer     *importer.Service
	Version      string
}

// Server is the HTTP API server for the device catalog.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg          config.ServerConfig
	manualsCfg   config.ManualsConfig
	logger       *logging.Logger
	deviceRepo   device.Repository
	locationRepo location.Repository
	manuals      *manual.Store
	importer     *importer.Service
	version      string
	server       *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.DeviceRepo == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if deps.LocationRepo == nil {
		return nil, fmt.Errorf("location repository is required")
	}
	if deps.ManualStore == nil {
		return nil, fmt.Errorf("manual store is required")
	}
	if deps.Importer == nil {
		return nil, fmt.Errorf("importer is required")
	}

	return &Server{
		cfg:          deps.Config,
		manualsCfg:   deps.Manuals,
		logger:       deps.Logger,
		deviceRepo:   deps.DeviceRepo,
		locationRepo: deps.LocationRepo,
		manuals:      deps.ManualStore,
		importer:     deps.Importer,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; stop it with Close().
func (s *Server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
