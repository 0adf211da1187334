package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/call-coach/docs"
	"github.com/johnquangdev/call-coach/internal/adapter/handler"
	"github.com/johnquangdev/call-coach/internal/adapter/repository"
	"github.com/johnquangdev/call-coach/internal/infrastructure/cache"
	"github.com/johnquangdev/call-coach/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/call-coach/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/call-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/call-coach/internal/infrastructure/storage"
	callUsecase "github.com/johnquangdev/call-coach/internal/usecase/call"
	"github.com/johnquangdev/call-coach/internal/usecase/coachable"
	"github.com/johnquangdev/call-coach/internal/usecase/pipeline"
	"github.com/johnquangdev/call-coach/internal/usecase/segmenter"
	pkgai "github.com/johnquangdev/call-coach/pkg/ai"
	"github.com/johnquangdev/call-coach/pkg/config"
	"github.com/johnquangdev/call-coach/pkg/logger"
	pkgvalidator "github.com/johnquangdev/call-coach/pkg/validator"
)

// @title           Call Coach API
// @version         1.0
// @description     Sales-call coaching API: transcription, speaker segmentation, sentiment and coachable-moment detection

// @BasePath  /v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting call coach",
		zap.String("environment", cfg.Server.Environment),
		zap.String("stt_provider", cfg.STT.Provider),
		zap.Bool("sentiment_enabled", cfg.Sentiment.Enabled),
		zap.String("sentiment_provider", cfg.Sentiment.Provider),
	)

	// Initialize Database
	db, err := database.NewDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Driver, zlog); err != nil {
			zlog.Fatal("failed to migrate database", zap.Error(err))
		}
	} else {
		zlog.Info("skipping migrations; run cmd/migrate to manage the schema")
	}

	sqlDB, err := db.DB()
	if err != nil {
		zlog.Fatal("failed to get database connection", zap.Error(err))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipeline(registry)
	httpMetrics := metrics.NewHTTP(registry)

	// Initialize repositories
	callRepo := repository.NewCallRepository(db)

	// Speech-to-text engine
	var stt pipeline.Transcriber
	switch cfg.STT.Provider {
	case "assemblyai":
		stt = pkgai.NewAssemblyAITranscriber(&cfg.Assembly)
	default:
		stt = pkgai.NewWhisperTranscriber(&cfg.OpenAI, cfg.STT)
	}

	// Sentiment engine
	var sentiment pipeline.SentimentAnalyzer
	if cfg.Sentiment.Enabled {
		switch cfg.Sentiment.Provider {
		case "openai":
			sentiment = pkgai.NewOpenAISentiment(&cfg.OpenAI, cfg.Sentiment.ChatModel, zlog)
		default:
			sentiment = pkgai.NewHuggingFaceSentiment(cfg.Sentiment, zlog)
		}
	}

	detector, err := coachable.NewDetector(
		coachable.WithThreshold(cfg.Coachable.ConfidenceThreshold),
		coachable.WithLogger(zlog),
	)
	if err != nil {
		zlog.Fatal("invalid coachable configuration", zap.Error(err))
	}

	seg := segmenter.New(cfg.Diarization.SilenceGapSeconds)
	zlog.Info("coaching rules loaded",
		zap.Float64("confidence_threshold", detector.Threshold()),
		zap.Float64("silence_gap_seconds", seg.SilenceGap()),
	)

	processor := pipeline.New(
		callRepo,
		stt,
		sentiment,
		detector,
		seg,
		pipeline.Options{SentimentEnabled: cfg.Sentiment.Enabled},
		zlog,
		pipelineMetrics,
	)

	// Cache
	var store cache.Store = cache.NewMemoryStore(time.Duration(cfg.Redis.TTL)*time.Second, 10*time.Minute)
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(context.Background(), cfg)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
		zlog.Info("redis cache enabled", zap.String("addr", cfg.GetRedisAddr()))
	}

	// Storage
	uploads, err := storage.NewLocalStore(cfg.Server.UploadDir)
	if err != nil {
		zlog.Fatal("failed to prepare upload dir", zap.Error(err))
	}

	opts := callUsecase.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		MaxConcurrency: cfg.Pipeline.MaxConcurrency,
		CacheTTL:       time.Duration(cfg.Redis.TTL) * time.Second,
	}
	deps := handler.RouterDeps{
		DB:      sqlDB,
		Metrics: metrics.Handler(registry),
	}

	if cfg.Storage.MinIOEnabled {
		archive, err := storage.NewMinIOStore(&cfg.Storage)
		if err != nil {
			zlog.Fatal("failed to create minio client", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = archive.EnsureBucket(ctx)
		cancel()
		if err != nil {
			zlog.Fatal("failed to prepare minio bucket", zap.Error(err))
		}
		opts.Archive = archive
		opts.Signer = archive
		deps.Archive = archive
		zlog.Info("minio archive enabled", zap.String("bucket", cfg.Storage.BucketName))
	}

	tts := pkgai.NewOpenAISpeech(&cfg.OpenAI, cfg.TTS, cfg.Server.OutputDir, zlog)
	callService := callUsecase.NewService(callRepo, processor, uploads, tts, store, opts, zlog)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgvalidator.New()

	e.Use(middleware.Recover())
	e.Use(httpmw.EchoRequestLogger(zlog))
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))
	// multipart overhead on top of the largest accepted upload
	e.Use(middleware.BodyLimit(formatMB(cfg.Server.MaxUploadSizeMB + 1)))

	router := handler.NewRouter(
		cfg,
		handler.NewCallHandler(callService, zlog),
		handler.NewSpeechHandler(callService, zlog),
		deps,
		zlog,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		zlog.Info("server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
		return
	}

	zlog.Info("server stopped gracefully")
}

func formatMB(mb int64) string {
	return strconv.FormatInt(mb, 10) + "M"
}
