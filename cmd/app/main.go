package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ducksnap/internal/api/v1/router"
	"ducksnap/internal/cache"
	"ducksnap/internal/config"
	"ducksnap/internal/database"
	"ducksnap/internal/logger"
	"ducksnap/internal/paypal"
	"ducksnap/internal/snapchat"
	"ducksnap/internal/storage"
	"ducksnap/internal/taskqueue"

	"github.com/joho/godotenv"
)

// @title DuckSnap API
// @version 1.0
// @description Snapchat creator analytics: dashboards, competitor benchmarks and PayPal subscriptions.
// @host localhost:8080
// @BasePath /api
// @Schemes http https

func main() {
	// 1. Load configuration. The .env file is read first so ENV and
	// LOG_LEVEL reach the logger.
	envErr := godotenv.Load()
	logger := logger.New()
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Backing services
	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.IsDevelopment(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db, logger); err != nil {
			logger.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3Client(ctx, storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure export storage")
	}

	deps := router.Dependencies{
		DB:     db,
		PayPal: paypal.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, nil),
		Snapchat: snapchat.New(snapchat.Config{
			ClientID:     cfg.SnapchatClientID,
			ClientSecret: cfg.SnapchatClientSecret,
			RedirectURL:  cfg.SnapchatRedirectURL,
			AuthURL:      cfg.SnapchatAuthURL,
			TokenURL:     cfg.SnapchatTokenURL,
			APIBaseURL:   cfg.SnapchatAPIBaseURL,
		}, nil),
		Queue:   taskqueue.New(rdb, cfg.TaskQueueName),
		Cache:   cache.New(rdb),
		Exports: storage.NewExportStore(s3Client, cfg.S3Bucket),
		Ping: func(r *http.Request) error {
			pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				return err
			}
			return rdb.Ping(pingCtx).Err()
		},
	}

	// 3. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(ctx, cfg, deps, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Start server in a goroutine
	go func() {
		logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Listen failed")
		}
	}()

	// 5. Graceful shutdown
	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received, exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server shut down gracefully")
}
