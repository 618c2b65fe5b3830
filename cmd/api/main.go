package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iump/fruittree-backend/api/routes"
	"github.com/iump/fruittree-backend/internal/basket"
	"github.com/iump/fruittree-backend/internal/fruits"
	"github.com/iump/fruittree-backend/internal/pets"
	"github.com/iump/fruittree-backend/internal/rewards"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/config"
	"github.com/iump/fruittree-backend/pkg/db"
	"github.com/iump/fruittree-backend/pkg/instance"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/metrics"
	"github.com/iump/fruittree-backend/pkg/migrate"
	"github.com/iump/fruittree-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
		Format:      cfg.App.LogFormat,
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

	catalog, err := fruits.Load(cfg.Catalog.Path)
	if err != nil {
		logg.Error(context.Background(), "failed to load fruit catalog", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	userService, err := users.NewService(users.ServiceParams{
		DB:   dbClient,
		Repo: userRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	basketService, err := basket.NewService(basket.ServiceParams{
		DB:         dbClient,
		Repo:       basket.NewRepository(dbClient.DB()),
		UserRepo:   userRepo,
		Catalog:    catalog,
		Logger:     logg,
		Metrics:    metrics.NewInventoryMetrics(prometheus.DefaultRegisterer),
		MaxRetries: &cfg.Inventory.MaxRetries,
		Backoff:    cfg.Inventory.RetryBackoff,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create basket service", err)
		os.Exit(1)
	}

	petService, err := pets.NewService(pets.ServiceParams{
		Repo:     pets.NewRepository(dbClient.DB()),
		UserRepo: userRepo,
		Rules:    pets.RulesFromConfig(cfg.Pet),
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pet service", err)
		os.Exit(1)
	}

	rewardService, err := rewards.NewService(rewards.ServiceParams{
		Basket:   basketService,
		Repo:     rewards.NewRepository(dbClient.DB()),
		UserRepo: userRepo,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rewards service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
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
			catalog,
			basketService,
			petService,
			rewardService,
			userService,
			promhttp.Handler(),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server stopped")
	}
}
