package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmarchetti/stockroom-backend/internal/cron"
	"github.com/rmarchetti/stockroom-backend/internal/notifications"
	"github.com/rmarchetti/stockroom-backend/internal/requests"
	"github.com/rmarchetti/stockroom-backend/internal/users"
	"github.com/rmarchetti/stockroom-backend/pkg/config"
	"github.com/rmarchetti/stockroom-backend/pkg/db"
	"github.com/rmarchetti/stockroom-backend/pkg/logger"
	"github.com/rmarchetti/stockroom-backend/pkg/metrics"
	"github.com/rmarchetti/stockroom-backend/pkg/migrate"
	"github.com/rmarchetti/stockroom-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	requestRepo := requests.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())
	fanout := notifications.NewFanout(notificationRepo, userRepo, logg)

	reminderJob, err := cron.NewPendingReminderJob(cron.PendingReminderJobParams{
		Logger:   logg,
		Requests: requestRepo,
		Notifier: fanout,
		Age:      cfg.Cron.PendingReminder,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pending reminder job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	registry.Register(reminderJob)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Cron.MetricsPort,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer metricsServer.Close()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
