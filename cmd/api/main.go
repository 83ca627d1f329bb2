package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jewelryoclock/storefront-backend/api/routes"
	"github.com/jewelryoclock/storefront-backend/internal/cart"
	"github.com/jewelryoclock/storefront-backend/internal/catalog"
	checkoutsvc "github.com/jewelryoclock/storefront-backend/internal/checkout"
	"github.com/jewelryoclock/storefront-backend/internal/describe"
	"github.com/jewelryoclock/storefront-backend/internal/identity"
	"github.com/jewelryoclock/storefront-backend/internal/orders"
	"github.com/jewelryoclock/storefront-backend/pkg/config"
	"github.com/jewelryoclock/storefront-backend/pkg/db"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
	"github.com/jewelryoclock/storefront-backend/pkg/metrics"
	"github.com/jewelryoclock/storefront-backend/pkg/migrate"
	"github.com/jewelryoclock/storefront-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	identityRepo := identity.NewRepository(dbClient.DB())

	cartStore, err := cart.NewStore(redisClient, logg, cfg.Shop.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	lastOrderStore, err := orders.NewLastOrderStore(redisClient, logg, cfg.Shop.LastOrderTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create last-order store", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, dbClient, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedCatalog {
		if err := catalogService.SeedIfEmpty(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to seed catalog", err)
			os.Exit(1)
		}
	}

	cartService, err := cart.NewService(cartStore, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		cartStore,
		catalogRepo,
		ordersRepo,
		lastOrderStore,
		dbClient,
		redisClient,
		checkoutMetrics,
		logg,
		cfg.Shop.PlaceOrderRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient, lastOrderStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	identityService, err := identity.NewService(identityRepo, dbClient, cfg.JWT, cfg.Password, cfg.Shop.AdminEmail)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	describeService, err := describe.NewService(cfg.OpenAI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create describe service", err)
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
			registry,
			identityService,
			catalogService,
			cartService,
			checkoutService,
			ordersService,
			describeService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
