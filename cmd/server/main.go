package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/TianyiLi/trip-schedule/internal/app"
	"github.com/TianyiLi/trip-schedule/internal/config"
	"github.com/TianyiLi/trip-schedule/internal/drive"
	"github.com/TianyiLi/trip-schedule/internal/handler"
	internalRedis "github.com/TianyiLi/trip-schedule/internal/redis"
	"github.com/TianyiLi/trip-schedule/internal/repository"
	"github.com/TianyiLi/trip-schedule/internal/repository/postgres"
	"github.com/TianyiLi/trip-schedule/internal/service"
	"github.com/TianyiLi/trip-schedule/internal/store"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before the stores so we can instrument them).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Select the blob backend for the trip collection.
	var blobs repository.BlobStore
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		blobs = postgres.NewBlobStore(db)
		log.Println("Connected to PostgreSQL")
	case config.StorageBackendRedis:
		blobs = internalRedis.NewBlobStore(redisClient)
	default:
		log.Fatalf("unknown storage backend %q", cfg.Storage.Backend)
	}

	// Load the trip collection into memory.
	trips := store.NewTripStore(blobs)
	if err := trips.Load(ctx); err != nil {
		log.Fatalf("failed to load trips: %v", err)
	}

	// Wire dependencies.
	server := wireServer(trips, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(trips *store.TripStore, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize the Google Drive client.
	driveClient := drive.NewClient(drive.Options{
		APIBaseURL:    cfg.Drive.APIBaseURL,
		UploadBaseURL: cfg.Drive.UploadBaseURL,
		FolderName:    cfg.Drive.FolderName,
	})

	// Initialize services.
	tripService := service.NewTripService(trips)
	syncService := service.NewSyncService(trips, driveClient)
	exportService := service.NewExportService(trips)

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService)
	syncHandler := handler.NewSyncHandler(syncService)
	exportHandler := handler.NewExportHandler(exportService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:   tripHandler,
		SyncHandler:   syncHandler,
		ExportHandler: exportHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
