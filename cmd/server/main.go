package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashburn-young/cokedemo/internal/config"
	"github.com/ashburn-young/cokedemo/internal/database"
	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/engine"
	"github.com/ashburn-young/cokedemo/internal/events"
	"github.com/ashburn-young/cokedemo/internal/modules/accounts"
	"github.com/ashburn-young/cokedemo/internal/modules/analytics"
	"github.com/ashburn-young/cokedemo/internal/modules/feed"
	"github.com/ashburn-young/cokedemo/internal/modules/insights"
	"github.com/ashburn-young/cokedemo/internal/modules/pipeline"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
	scoringapi "github.com/ashburn-young/cokedemo/internal/modules/scoring/api"
	"github.com/ashburn-young/cokedemo/internal/scheduler"
	"github.com/ashburn-young/cokedemo/internal/server"
	"github.com/ashburn-young/cokedemo/internal/services"
	"github.com/ashburn-young/cokedemo/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	log.Info().Msg("Starting SalesIntel")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Scoring configuration: TOML file when configured, documented
	// defaults otherwise. A bad file is fatal before any batch runs.
	scoringCfg := scoring.Default()
	if cfg.ScoringConfigPath != "" {
		scoringCfg, err = scoring.NewLoader(log).LoadFromFile(cfg.ScoringConfigPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid scoring configuration")
		}
	}

	eng, err := engine.New(scoringCfg, insights.NewTemplateSummarizer(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build scoring engine")
	}

	eventManager := events.NewManager(log)

	runRepo := repositories.NewRunRepository(db.Conn(), log)
	accountRepo := accounts.NewRepository(db.Conn(), log)
	oppRepo := pipeline.NewRepository(db.Conn(), log)
	insightRepo := insights.NewRepository(db.Conn(), log)

	runService := services.NewRunService(eng, db, runRepo, accountRepo, oppRepo, insightRepo, eventManager, log)

	generator := feed.NewGenerator(cfg.FeedSeed, cfg.FeedAccounts, cfg.FeedOpportunities)
	feedService := feed.NewService(generator, runService, eventManager, log)

	// Seed an initial run so the read endpoints have data immediately.
	if _, err := feedService.Refresh(time.Now().UTC()); err != nil {
		log.Fatal().Err(err).Msg("Initial feed refresh failed")
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.FeedRefreshSchedule, scheduler.NewRescoreJob(feedService, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rescore job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DB:      db,
		Config:  cfg,
		DevMode: cfg.DevMode,
		Modules: []server.RouteRegistrar{
			scoringapi.NewHandler(runService, runRepo, log),
			accounts.NewHandler(accountRepo, runRepo, log),
			pipeline.NewHandler(oppRepo, runRepo, log),
			insights.NewHandler(insightRepo, runRepo, log),
			analytics.NewHandler(runRepo, accountRepo, oppRepo, insightRepo, log),
			feed.NewHandler(feedService, log),
		},
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
