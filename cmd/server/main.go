package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"manifest-service/internal/domain/repository"
	"manifest-service/internal/infrastructure/config"
	"manifest-service/internal/infrastructure/oauth"
	"manifest-service/internal/infrastructure/persistence"
	"manifest-service/internal/infrastructure/router"
	"manifest-service/internal/interface/export"
	"manifest-service/internal/interface/gmail"
	"manifest-service/internal/interface/handler"
	"manifest-service/internal/interface/recognition"
	repo "manifest-service/internal/interface/repository"
	"manifest-service/internal/usecase"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/metrics"
	"manifest-service/templates"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Manifest Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appMetrics := metrics.NewMetrics("manifest", prometheus.DefaultRegisterer)

	recognizer, err := recognition.NewGeminiRecognizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RecognitionTimeout, log)
	if err != nil {
		log.Fatal("Failed to create recognition client", "error", err)
	}

	// Optional MongoDB: inbox bookkeeping and extraction audit log
	var (
		mongoClient       *mongo.Client
		inboxRepository   repository.InboxRepository
		extractionLogRepo repository.ExtractionLogRepository
	)
	if cfg.MongoEnabled() {
		log.Info("Connecting to MongoDB")
		mongoClient, err = persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

		inboxRepository, err = repo.NewMongoInboxRepository(ctx, db)
		if err != nil {
			log.Fatal("Failed to set up inbox repository", "error", err)
		}
		extractionLogRepo, err = repo.NewMongoExtractionLogRepository(ctx, db)
		if err != nil {
			log.Fatal("Failed to set up extraction log repository", "error", err)
		}
	}

	// Optional PostgreSQL: country names for the export
	var (
		gormDB            *gorm.DB
		countryRepository repository.CountryRepository
	)
	if cfg.PostgresEnabled() {
		log.Info("Connecting to PostgreSQL")
		gormDB, err = persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		countryRepository = repo.NewGormCountryRepository(gormDB)
	}

	// Core
	manifestService := usecase.NewManifestService(cfg.HistoryLimit, appMetrics, log)
	pipeline := usecase.NewIngestionPipeline(manifestService, recognizer, extractionLogRepo, appMetrics, log)
	exportService := usecase.NewExportService(export.NewExcelWriter(), countryRepository, appMetrics, log)
	viewState := usecase.NewViewState()

	// Optional Gmail intake
	if cfg.GmailEnabled() {
		subjectRouter := router.NewSubjectRouter(log)
		subjectRouter.Register(templates.NewPassportScanHandler(pipeline, cfg.GmailSubjectPatterns, log))
		orchestrator := usecase.NewInboxOrchestrator(inboxRepository, subjectRouter, log)

		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRefreshToken,
			"",
			log,
		)

		gmailService, err := gmail.NewGmailService(ctx, gmailOAuth.GetTokenSource(ctx), inboxRepository, orchestrator, log, cfg.GmailPollInterval)
		if err != nil {
			log.Fatal("Failed to create Gmail service", "error", err)
		}

		// Start Gmail polling in a goroutine
		go gmailService.StartPolling(ctx)
	}

	// Set up HTTP routes
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	handler.NewManifestHandler(manifestService, pipeline, viewState, exportService, log).Register(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Let running batches settle before closing the stores they audit to
	pipeline.Wait()

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}
	if gormDB != nil {
		if err := persistence.ClosePostgresDB(gormDB); err != nil {
			log.Error("PostgreSQL close error", "error", err)
		}
	}

	log.Info("Manifest Service stopped")
}
