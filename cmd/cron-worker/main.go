package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/cron"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/reconcile"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/lock"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/numbering"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
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

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	once := len(os.Args) > 1 && os.Args[1] == "once"
	if err := run(cfg, logg, once); err != nil {
		logg.Error(context.Background(), "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger, once bool) (err error) {
	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	service, err := buildService(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(cfg.Service.Kind),
	})

	if once {
		logg.Info(ctx, "running single cron cycle")
		return service.RunOnce(ctx)
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
	return nil
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	conn := dbClient.DB()

	numbers, err := numbering.NewGenerator(cfg.Checkout.NodeID)
	if err != nil {
		return nil, err
	}
	ordersService, err := orders.NewService(orders.NewRepository(conn), dbClient, numbers)
	if err != nil {
		return nil, err
	}
	analyticsService, err := analytics.NewService(analytics.NewRepository(conn))
	if err != nil {
		return nil, err
	}

	var checkoutMetrics *metrics.CheckoutMetrics
	var cronMetrics *metrics.CronJobMetrics
	if cfg.FeatureFlags.Metrics {
		checkoutMetrics = metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
		cronMetrics = metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	}

	reconciler, err := reconcile.New(reconcile.Params{
		Steps:       checkout.NewStepRepository(conn),
		Orders:      ordersService,
		Analytics:   analyticsService,
		Logger:      logg,
		Metrics:     checkoutMetrics,
		Lookback:    cfg.Reconcile.Lookback,
		Batch:       cfg.Reconcile.Batch,
		MaxAttempts: cfg.Reconcile.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	reconcileJob, err := cron.NewReconcileJob(logg, reconciler)
	if err != nil {
		return nil, err
	}
	expiryJob, err := cron.NewAccountExpiryJob(logg, auth.NewRepository(conn))
	if err != nil {
		return nil, err
	}

	locker, err := lock.NewLocker(redisClient, cfg.Reconcile.LockTTL)
	if err != nil {
		return nil, err
	}
	cycleLock, err := cron.NewLeaseLock(locker, redisClient.LockKey("cron", cfg.App.Env))
	if err != nil {
		return nil, err
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reconcileJob, expiryJob),
		Lock:     cycleLock,
		Metrics:  cronMetrics,
		Interval: cfg.Reconcile.Interval,
	})
}
