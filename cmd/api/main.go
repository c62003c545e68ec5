package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"notaryapi/internal/config"
	"notaryapi/internal/database"
	"notaryapi/internal/database/migration"
	handlers "notaryapi/internal/http/handler"
	"notaryapi/internal/http/middleware"
	"notaryapi/internal/ledger"
	"notaryapi/internal/otel"
	"notaryapi/internal/repository"
	"notaryapi/internal/repository/postgres"
	"notaryapi/internal/service"
	"notaryapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// The journal is an optional audit index; the sidecars remain the source
	// of truth, so the whole database stack is skipped when disabled.
	var db *sql.DB
	var journal repository.NotarizationJournal
	if cfg.JournalEnabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(context.Background(), db, time.UTC, cfg.Database.Host); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		journal = postgres.NewJournalPostgres(db)
	}

	store, err := newContentStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize content store: %v", err)
	}

	registry := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	metrics, err := service.NewMetrics(registry)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}

	validator := ledger.NewValidator(cfg.SupportedLedgers)
	svc := service.NewNotarizationService(store, validator, service.Options{
		Journal:       journal,
		VerifyOnQuery: cfg.VerifyOnQuery,
		Metrics:       metrics,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())
	app.Use(otelfiber.Middleware())

	handlers.RegisterRoutes(app, db, svc, journal, registry)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func newContentStore(cfg *config.AppConfig) (storage.ContentStore, error) {
	if cfg.Storage.Backend == "minio" {
		return storage.NewMinIO(cfg.MinIO)
	}
	return storage.NewFilesystem(cfg.Storage.Root)
}
