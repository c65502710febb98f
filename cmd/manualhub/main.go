// manualhub is a self-hosted catalog for household devices and their PDF
// manuals. It keeps a local SQLite store of devices and locations, serves a
// JSON API for managing them, and merges in whatever a home-automation hub
// is willing to reveal about the house.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/morbeth/home-assistant-pdf-manuals/migrations"

	"github.com/morbeth/home-assistant-pdf-manuals/internal/api"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/device"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/hub"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/importer"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/config"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/database"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/infrastructure/logging"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/location"
	"github.com/morbeth/home-assistant-pdf-manuals/internal/manual"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting manualhub", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	// Open database and migrate
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	// Repositories and stores
	deviceRepo := device.NewSQLiteRepository(db.DB)
	locationRepo := location.NewSQLiteRepository(db.DB)
	manualStore, err := manual.NewStore(cfg.Manuals, deviceRepo, log)
	if err != nil {
		return fmt.Errorf("initialising manual store: %w", err)
	}

	// Hub discovery client (optional)
	var discoverer importer.Discoverer
	if cfg.Hub.Enabled {
		token := os.Getenv(cfg.Hub.TokenEnv)
		if token == "" {
			log.Warn("hub token not set, requests will be unauthenticated",
				"env", cfg.Hub.TokenEnv)
		}
		discoverer = hub.New(ctx, hub.NewConfig(cfg.Hub, token), log)
	} else {
		log.Info("hub discovery disabled")
	}

	svc := importer.New(discoverer, deviceRepo, locationRepo, log)

	// One-time migration from the flat-JSON store of earlier releases.
	// An unreadable legacy file never blocks startup; the catalog just
	// starts empty and the files stay in place for a later attempt.
	if migrated, err := svc.ImportLegacyStore(ctx, cfg.Legacy); err != nil {
		log.Warn("legacy store migration failed", "error", err)
	} else if migrated > 0 {
		log.Info("legacy store imported", "devices", migrated)
	}

	// Make sure every device's location exists before serving requests.
	if err := svc.SeedLocations(ctx); err != nil {
		return fmt.Errorf("seeding locations: %w", err)
	}

	// Best-effort area import at startup; the hub may well be down.
	if cfg.Hub.Enabled {
		if added, err := svc.ImportAreas(ctx); err != nil {
			log.Warn("startup area import failed", "error", err)
		} else if added > 0 {
			log.Info("startup area import", "added", added)
		}
	}

	// API server
	server, err := api.New(api.Deps{
		Config:       cfg.Server,
		Manuals:      cfg.Manuals,
		Logger:       log,
		DeviceRepo:   deviceRepo,
		LocationRepo: locationRepo,
		ManualStore:  manualStore,
		Importer:     svc,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("manualhub stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MANUALHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MANUALHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
