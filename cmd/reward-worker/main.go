package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iump/fruittree-backend/internal/basket"
	"github.com/iump/fruittree-backend/internal/fruits"
	"github.com/iump/fruittree-backend/internal/rewards"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/config"
	"github.com/iump/fruittree-backend/pkg/db"
	"github.com/iump/fruittree-backend/pkg/eventing/idempotency"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/metrics"
	"github.com/iump/fruittree-backend/pkg/pubsub"
	"github.com/iump/fruittree-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "reward-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "reward-worker"

	logg = logger.New(logger.Options{
		ServiceName: "reward-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.RewardsSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "rewards subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	catalog, err := fruits.Load(cfg.Catalog.Path)
	requireResource(ctx, logg, "fruit catalog", err)

	userRepo := users.NewRepository(dbClient.DB())
	userService, err := users.NewService(users.ServiceParams{
		DB:   dbClient,
		Repo: userRepo,
	})
	requireResource(ctx, logg, "users service", err)

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
	requireResource(ctx, logg, "basket service", err)

	rewardService, err := rewards.NewService(rewards.ServiceParams{
		Basket:   basketService,
		Repo:     rewards.NewRepository(dbClient.DB()),
		UserRepo: userRepo,
		Logger:   logg,
	})
	requireResource(ctx, logg, "rewards service", err)

	consumer, err := rewards.NewConsumer(rewards.ConsumerParams{
		Rewards:      rewardService,
		Accounts:     userService,
		Subscription: subscription,
		Idempotency:  manager,
		Metrics:      metrics.NewRewardEventMetrics(prometheus.DefaultRegisterer),
		Logger:       logg,
	})
	requireResource(ctx, logg, "reward consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":          cfg.App.Env,
		"serviceKind":  cfg.Service.Kind,
		"subscription": cfg.PubSub.RewardsSubscription,
	})
	logg.Info(runCtx, "reward worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "reward worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
