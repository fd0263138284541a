package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtaanigas/fulfillment-backend/api"
	"github.com/mtaanigas/fulfillment-backend/api/routes"
	"github.com/mtaanigas/fulfillment-backend/internal/cart"
	"github.com/mtaanigas/fulfillment-backend/internal/dealers"
	"github.com/mtaanigas/fulfillment-backend/internal/orders"
	"github.com/mtaanigas/fulfillment-backend/internal/paymentmethods"
	"github.com/mtaanigas/fulfillment-backend/internal/payments"
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

	conn := dbClient.DB()
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)
	usersRepo := users.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	methodsRepo := paymentmethods.NewRepository(conn)

	productService, err := product.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	matcher, err := dealers.NewService(usersRepo, dealers.NewRepository(conn), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dealer matcher", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:             ordersRepo,
		Cart:             cartRepo,
		Inventory:        product.NewInventory(productRepo),
		Matcher:          matcher,
		Users:            usersRepo,
		Tx:               dbClient,
		Outbox:           outboxService,
		Metrics:          orderMetrics,
		Logger:           logg,
		AssignmentWindow: cfg.Orders.AssignmentWindow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	paymentMethodService, err := paymentmethods.NewService(paymentmethods.ServiceParams{
		Repo:     methodsRepo,
		TxRunner: dbClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment method service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:     payments.NewRepository(conn),
		Orders:   ordersRepo,
		Methods:  methodsRepo,
		TxRunner: dbClient,
		Outbox:   outboxService,
		Metrics:  orderMetrics,
		Logger:   logg,
		Config:   cfg.Payments,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := instance.GetID("local")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		promhttp.Handler(),
		productService,
		cartService,
		ordersService,
		paymentMethodService,
		paymentService,
	)

	server := api.NewServer(addr, router, logg)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server stopped")
}
