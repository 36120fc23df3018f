package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"ducksnap/internal/cache"
	"ducksnap/internal/config"
	"ducksnap/internal/database"
	"ducksnap/internal/logger"
	"ducksnap/internal/paypal"
	"ducksnap/internal/repository"
	"ducksnap/internal/service"
	"ducksnap/internal/snapchat"
	"ducksnap/internal/taskqueue"
	"ducksnap/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Parse mode flag
	mode := flag.String("mode", "", "Worker mode: tasks|scheduler")
	flag.Parse()

	envErr := godotenv.Load()
	logger := logger.New()
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading config")
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.IsDevelopment(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer rdb.Close()

	queue := taskqueue.New(rdb, cfg.TaskQueueName)
	snap := snapchat.New(snapchat.Config{
		ClientID:     cfg.SnapchatClientID,
		ClientSecret: cfg.SnapchatClientSecret,
		RedirectURL:  cfg.SnapchatRedirectURL,
		AuthURL:      cfg.SnapchatAuthURL,
		TokenURL:     cfg.SnapchatTokenURL,
		APIBaseURL:   cfg.SnapchatAPIBaseURL,
	}, nil)

	userRepo := repository.NewUserRepo(db)
	snapRepo := repository.NewSnapchatRepo(db)
	analysisSvc := service.NewAnalysisService(repository.NewAnalysisRepo(db), snapRepo, logger)
	syncSvc := service.NewSyncService(userRepo, snapRepo, repository.NewInsightRepo(db), analysisSvc, snap, queue, logger)

	// Dispatch to the selected worker
	var runErr error
	switch *mode {
	case "tasks":
		p := worker.NewProcessor(queue, syncSvc, analysisSvc, worker.Options{
			PollTimeout:    cfg.WorkerPollTimeout,
			MaxRetries:     cfg.WorkerMaxRetries,
			BackoffInitial: cfg.WorkerBackoffInitial,
			BackoffMax:     cfg.WorkerBackoffMax,
		}, logger)
		runErr = p.Run(ctx)
	case "scheduler":
		pp := paypal.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, nil)
		billing := service.BillingConfig{PublicBaseURL: cfg.PublicBaseURL, PayPalPlans: cfg.PayPalPlans()}
		subSvc := service.NewSubscriptionService(userRepo, repository.NewSubscriptionRepo(db), pp, billing, logger)
		s, err := worker.NewScheduler(subSvc, syncSvc, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to build scheduler")
		}
		runErr = s.Run(ctx)
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	if runErr != nil {
		logger.Fatal().Msgf("%s worker failed: %v", *mode, runErr)
	}

	logger.Info().Msgf("%s worker stopped gracefully", *mode)
}
