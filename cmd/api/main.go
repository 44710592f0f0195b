package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docsvc/docs"
	"docsvc/internal/config"
	"docsvc/internal/database"
	"docsvc/internal/database/migration"
	handlers "docsvc/internal/http/handler"
	"docsvc/internal/http/middleware"
	svcotel "docsvc/internal/otel"
	"docsvc/internal/repository/postgres"
	"docsvc/internal/service"
	"docsvc/internal/storage"
)

// @title Document Service API
// @version 1.0
// @BasePath /
func main() {
	// One explicitly constructed logger, passed into every component.
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log.Info("document service starting",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"upload_dir", cfg.Storage.UploadDir,
		"cleanup_delay_seconds", int(cfg.Upload.CleanupDelay.Seconds()))

	ctx := context.Background()

	// Tracing (OTLP); degrades to no-op when no exporter is reachable.
	shutdownTracing, err := svcotel.Init(ctx, log)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(ctx)

	// PostgreSQL pool (pgx stdlib driver, otelsql instrumented)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		log.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// File storage: local disk by default, S3-compatible when configured.
	var store storage.Storage
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewMinIO(cfg.Storage)
	default:
		store, err = storage.NewDisk(cfg.Storage.UploadDir)
	}
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Repositories, scheduler and service
	docRepo := postgres.NewDocumentPostgres(db)
	invoiceRepo := postgres.NewInvoicePostgres(db)
	auditRepo := postgres.NewAuditLogPostgres(db)
	scheduler := service.NewScheduler(store, docRepo, auditRepo, log)
	docSvc := service.NewDocumentService(store, docRepo, invoiceRepo, auditRepo,
		scheduler, log, cfg.Upload, cfg.Storage.UploadDir)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave headroom above the payload cap so oversize uploads reach
		// the pipeline and get the 400 instead of a transport-level reject.
		BodyLimit: int(cfg.Upload.MaxFileSize) * 2,
	})

	// Global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected dependencies
	handlers.RegisterRoutes(app, db, docSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
