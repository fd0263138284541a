package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mtaanigas/fulfillment-backend/internal/cart"
	"github.com/mtaanigas/fulfillment-backend/internal/cron"
	"github.com/mtaanigas/fulfillment-backend/internal/dealers"
	"github.com/mtaanigas/fulfillment-backend/internal/orders"
	product "github.com/mtaanigas/fulfillment-backend/internal/products"
	"github.com/mtaanigas/fulfillment-backend/internal/users"
	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	"github.com/mtaanigas/fulfillment-backend/pkg/db"
	"github.com/mtaanigas/fulfillment-backend/pkg/instance"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/metrics"
	"github.com/mtaanigas/fulfillment-backend/pkg/migrate"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox"
	"github.com/mtaanigas/fulfillment-backend/pkg/redis"
)

const lockKeyFormat = "cron-worker:%s"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

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

	conn := dbClient.DB()
	outboxRepo := outbox.NewRepository(conn)
	usersRepo := users.NewRepository(conn)
	matcher, err := dealers.NewService(usersRepo, dealers.NewRepository(conn), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dealer matcher", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:             orders.NewRepository(conn),
		Cart:             cart.NewRepository(conn),
		Inventory:        product.NewInventory(product.NewRepository(conn)),
		Matcher:          matcher,
		Users:            usersRepo,
		Tx:               dbClient,
		Outbox:           outbox.NewService(outboxRepo, logg),
		Metrics:          metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
		Logger:           logg,
		AssignmentWindow: cfg.Orders.AssignmentWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewAssignmentExpiryJob(cron.AssignmentExpiryJobParams{
		Logger:    logg,
		Orders:    orderService,
		BatchSize: cfg.Orders.ExpirySweepBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment expiry job", err)
		os.Exit(1)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), 2*cfg.Cron.Interval)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(expiryJob, retentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metricsCollector,
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID("cron-worker-0"),
	})

	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
