package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/upliftbridge/upliftbridge-backend/api/routes"
	"github.com/upliftbridge/upliftbridge-backend/internal/funding"
	"github.com/upliftbridge/upliftbridge-backend/internal/needs"
	"github.com/upliftbridge/upliftbridge-backend/internal/pledges"
	"github.com/upliftbridge/upliftbridge-backend/internal/stories"
	"github.com/upliftbridge/upliftbridge-backend/internal/updates"
	"github.com/upliftbridge/upliftbridge-backend/pkg/config"
	"github.com/upliftbridge/upliftbridge-backend/pkg/db"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/metrics"
	"github.com/upliftbridge/upliftbridge-backend/pkg/migrate"
	"github.com/upliftbridge/upliftbridge-backend/pkg/redis"
	"github.com/upliftbridge/upliftbridge-backend/pkg/storage/localdisk"
	"github.com/upliftbridge/upliftbridge-backend/pkg/stripe"
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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	uploadsClient, err := localdisk.NewClient(context.Background(), cfg.Uploads, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap uploads storage", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	fundingMetrics := metrics.NewFundingMetrics(registry)

	needsRepo := needs.NewRepository(dbClient.DB())
	needsService, err := needs.NewService(needsRepo, uploadsClient, logg, needs.ModerationConfig{
		ReviewerName:    cfg.Admin.ReviewerName,
		MinRejectionLen: cfg.Admin.MinRejectionLen,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create needs service", err)
		os.Exit(1)
	}

	fundingService, err := funding.NewService(
		funding.NewRepository(dbClient.DB()),
		funding.NewCheckoutClient(stripeClient),
		dbClient,
		logg,
		fundingMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create funding service", err)
		os.Exit(1)
	}

	updatesService, err := updates.NewService(updates.NewRepository(dbClient.DB()), needsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create updates service", err)
		os.Exit(1)
	}

	storiesService, err := stories.NewService(stories.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stories service", err)
		os.Exit(1)
	}

	pledgesService, err := pledges.NewService(pledges.NewRepository(dbClient.DB()), needsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pledges service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: registry,
			Needs:    needsService,
			Funding:  fundingService,
			Updates:  updatesService,
			Stories:  storiesService,
			Pledges:  pledgesService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
