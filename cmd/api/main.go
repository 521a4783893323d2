package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/ezshop-backend/api/routes"
	"github.com/angelmondragon/ezshop-backend/internal/cart"
	products "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/internal/reviews"
	"github.com/angelmondragon/ezshop-backend/pkg/config"
	"github.com/angelmondragon/ezshop-backend/pkg/db"
	"github.com/angelmondragon/ezshop-backend/pkg/logger"
	"github.com/angelmondragon/ezshop-backend/pkg/metrics"
	"github.com/angelmondragon/ezshop-backend/pkg/migrate"
	"github.com/angelmondragon/ezshop-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured, idempotency and rate limiting disabled")
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	services, err := buildServices(dbClient, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, dbClient, redisClient, registry, services),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(dbClient *db.Client, registry *prometheus.Registry) (routes.Services, error) {
	productRepo := products.NewRepository(dbClient.DB())
	productService, err := products.NewService(productRepo, dbClient, time.Now)
	if err != nil {
		return routes.Services{}, err
	}

	store, err := cart.NewStore(dbClient, productRepo, cart.NewRepository(dbClient.DB()), time.Now)
	if err != nil {
		return routes.Services{}, err
	}
	var cartMetrics *metrics.CartMetrics
	if registry != nil {
		cartMetrics = metrics.NewCartMetrics(registry)
	}
	cartService, err := cart.NewService(store, cartMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		ReviewRepo:  reviews.NewRepository(dbClient.DB()),
		ProductRepo: productRepo,
		Now:         time.Now,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Cart:     cartService,
		Products: productService,
		Reviews:  reviewService,
	}, nil
}
