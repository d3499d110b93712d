package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/merchpilot/fieldops-backend/api/routes"
	"github.com/merchpilot/fieldops-backend/internal/activity"
	"github.com/merchpilot/fieldops-backend/internal/assignments"
	"github.com/merchpilot/fieldops-backend/internal/contributions"
	"github.com/merchpilot/fieldops-backend/internal/dashboard"
	"github.com/merchpilot/fieldops-backend/internal/goals"
	"github.com/merchpilot/fieldops-backend/internal/markets"
	"github.com/merchpilot/fieldops-backend/internal/reps"
	"github.com/merchpilot/fieldops-backend/internal/waves"
	"github.com/merchpilot/fieldops-backend/pkg/config"
	"github.com/merchpilot/fieldops-backend/pkg/db"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
	"github.com/merchpilot/fieldops-backend/pkg/metrics"
	"github.com/merchpilot/fieldops-backend/pkg/migrate"
	"github.com/merchpilot/fieldops-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	wavesRepo := waves.NewRepository(dbClient.DB())
	assignmentsRepo := assignments.NewRepository(dbClient.DB())
	marketsRepo := markets.NewRepository(dbClient.DB())
	repsRepo := reps.NewRepository(dbClient.DB())
	contributionsRepo := contributions.NewRepository(dbClient.DB())

	goalsService, err := goals.NewService(assignmentsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create goals service", err)
		os.Exit(1)
	}

	wavesService, err := waves.NewService(wavesRepo, assignmentsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create waves service", err)
		os.Exit(1)
	}

	contributionMetrics := metrics.NewContributionMetrics(prometheus.DefaultRegisterer)
	contributionsService, err := contributions.NewService(
		contributionsRepo,
		wavesRepo,
		marketsRepo,
		dbClient,
		logg,
		contributionMetrics,
		cfg.Contribution.MaxBatchItems,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create contributions service", err)
		os.Exit(1)
	}

	activityService, err := activity.NewService(contributionsRepo, wavesRepo, repsRepo, marketsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(
		marketsRepo,
		assignmentsRepo,
		wavesRepo,
		contributionsRepo,
		goalsService,
		logg,
		cfg.Dashboard.RecentWaveGrace,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			wavesService,
			contributionsService,
			activityService,
			dashboardService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
