package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/meetwise-team/meeting-insights/pkg/validator"

	"github.com/meetwise-team/meeting-insights/internal/adapter/handler"
	"github.com/meetwise-team/meeting-insights/internal/adapter/repository"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/cache"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/database"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/search"
	"github.com/meetwise-team/meeting-insights/internal/infrastructure/storage"
	"github.com/meetwise-team/meeting-insights/internal/usecase/insight"
	jobuse "github.com/meetwise-team/meeting-insights/internal/usecase/job"
	meetinguse "github.com/meetwise-team/meeting-insights/internal/usecase/meeting"
	reportuse "github.com/meetwise-team/meeting-insights/internal/usecase/report"
	pkgai "github.com/meetwise-team/meeting-insights/pkg/ai"
	"github.com/meetwise-team/meeting-insights/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// Reject uploads bigger than the configured cap before reading them
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Upload.MaxMB+1)))

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize job progress cache (Redis when enabled)
	var progressCache cache.ProgressCache
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		progressCache = cache.NewRedisProgressCache(redisClient)
	} else {
		log.Println("📦 Redis disabled, using in-process progress cache")
		progressCache = cache.NewMemoryProgressCache()
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	fileRepo := repository.NewFileRepository(db)
	segmentRepo := repository.NewSegmentRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize media storage
	log.Printf("🗄️  Initializing %s storage...", cfg.Storage.Type)
	var store storage.Store
	switch cfg.Storage.Type {
	case "minio":
		store, err = storage.NewMinIOStore(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO storage: %v", err)
		}
	default:
		store, err = storage.NewLocalStore(cfg.Storage.LocalDir)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
	}

	// Initialize model clients
	log.Println("🤖 Initializing model clients...")
	ollamaClient := pkgai.NewOllamaClient(&cfg.Ollama, logger)
	embedder := pkgai.NewFallbackEmbedder(ollamaClient, cfg.Index.Dimension, logger)

	// Initialize the semantic segment index
	log.Printf("🔎 Initializing %s index...", cfg.Index.Backend)
	var index search.Index
	switch cfg.Index.Backend {
	case "pgvector":
		pgIndex, err := search.NewPgVectorIndex(context.Background(), cfg, embedder)
		if err != nil {
			log.Fatalf("Failed to initialize pgvector index: %v", err)
		}
		defer pgIndex.Close()
		index = pgIndex
	default:
		index = search.NewMemoryIndex(embedder)
	}

	// Initialize the transcription engine
	log.Printf("🎙️  Initializing %s transcription...", cfg.Transcription.Engine)
	var transcriber insight.Transcriber
	switch cfg.Transcription.Engine {
	case "assemblyai":
		transcriber = pkgai.NewAssemblyAIClient(&cfg.Assembly, logger)
	default:
		transcriber = pkgai.NewWhisperCPPClient(&cfg.Whisper, logger)
	}

	// Diarization is optional; the normalizer degrades to heuristics
	var diarizer insight.Diarizer
	if cfg.Diarization.Enabled {
		log.Println("🗣️  Diarization sidecar enabled")
		diarizer = pkgai.NewDiarizationClient(&cfg.Diarization, logger)
	}

	// Wire the processing pipeline
	log.Println("🧠 Wiring the insight pipeline...")
	normalizer := insight.NewNormalizer(diarizer, logger)
	extractor := insight.NewExtractor(ollamaClient, logger)
	sentimentEngine := insight.NewSentimentEngine(ollamaClient, logger)
	pipeline := insight.NewPipeline(
		meetingRepo, fileRepo, segmentRepo, insightRepo,
		store, index, transcriber, normalizer, extractor, sentimentEngine,
		logger,
	)

	// Initialize services
	log.Println("✨ Initializing services...")
	jobService := jobuse.NewService(jobRepo, meetingRepo, pipeline, progressCache, logger)
	meetingService := meetinguse.NewService(meetingRepo, fileRepo, segmentRepo, insightRepo, store, index, cfg, logger)
	reportExporter := reportuse.NewExporter(meetingRepo, insightRepo, logger)

	// Retry meetings whose processing never completed
	go func() {
		if _, err := jobService.Backfill(context.Background()); err != nil {
			logger.Warn("⚠️ Startup backfill failed", zap.Error(err))
		}
	}()

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	meetingHandler := handler.NewMeetingHandler(meetingService, jobService, logger)
	jobHandler := handler.NewJobHandler(jobService, logger)
	reportHandler := handler.NewReportHandler(reportExporter, logger)

	router := handler.NewRouter(cfg, meetingHandler, jobHandler, reportHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
