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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/delivery"
	"github.com/angelmondragon/storefront-backend/internal/invoices"
	"github.com/angelmondragon/storefront-backend/internal/mirror"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/drive"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/lock"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/mailer"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/numbering"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/sheets"
	"github.com/angelmondragon/storefront-backend/pkg/whatsapp"
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
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	deps, err := buildDependencies(ctx, cfg, logg, dbClient, redisClient, sessionManager)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, routes.NewRouter(cfg, logg, deps))

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(cfg.Service.Kind),
	})
	logg.Info(ctx, "starting api server")

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildDependencies(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
) (routes.Dependencies, error) {
	conn := dbClient.DB()

	numbers, err := numbering.NewGenerator(cfg.Checkout.NodeID)
	if err != nil {
		return routes.Dependencies{}, err
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(conn))
	if err != nil {
		return routes.Dependencies{}, err
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(conn), analyticsService)
	if err != nil {
		return routes.Dependencies{}, err
	}
	cartStore, err := cart.NewStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		return routes.Dependencies{}, err
	}
	cartService, err := cart.NewService(cartStore, catalogService, analyticsService)
	if err != nil {
		return routes.Dependencies{}, err
	}
	settingsService, err := settings.NewService(settings.NewRepository(conn))
	if err != nil {
		return routes.Dependencies{}, err
	}
	ordersService, err := orders.NewService(orders.NewRepository(conn), dbClient, numbers)
	if err != nil {
		return routes.Dependencies{}, err
	}
	invoicesService, err := invoices.NewService(invoices.NewRepository(conn), numbers, invoices.Defaults{
		TaxPercent:      cfg.Checkout.Tax(),
		DiscountPercent: cfg.Checkout.Discount(),
		HSNSAC:          cfg.Checkout.HSNCode,
		Unit:            cfg.Checkout.Unit,
		Notes:           cfg.Checkout.InvoiceNotes,
		DueDays:         cfg.Checkout.DueDays,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	dispatcher, err := delivery.NewDispatcher(
		mailer.New(),
		whatsapp.NewClient(cfg.HTTPClient.Timeout),
		drive.NewUploader(),
		logg,
	)
	if err != nil {
		return routes.Dependencies{}, err
	}
	sheetMirror, err := mirror.New(sheets.NewAppender(cfg.Google), logg)
	if err != nil {
		return routes.Dependencies{}, err
	}

	locker, err := lock.NewLocker(redisClient, cfg.Checkout.LockTTL)
	if err != nil {
		return routes.Dependencies{}, err
	}
	checkoutSessions, err := checkout.NewSessionStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		return routes.Dependencies{}, err
	}

	var (
		checkoutMetrics *metrics.CheckoutMetrics
		metricsHandler  http.Handler
	)
	if cfg.FeatureFlags.Metrics {
		checkoutMetrics = metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
		metricsHandler = promhttp.Handler()
	}

	checkoutService, err := checkout.NewService(checkout.Dependencies{
		Sessions:      checkoutSessions,
		Locker:        locker,
		Cart:          cartService,
		Orders:        ordersService,
		Settings:      settingsService,
		Invoices:      invoicesService,
		Delivery:      dispatcher,
		Mirror:        sheetMirror,
		Analytics:     analyticsService,
		Steps:         checkout.NewStepRepository(conn),
		Metrics:       checkoutMetrics,
		Logger:        logg,
		RedirectAfter: cfg.Checkout.SuccessRedirect,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	accountsRepo := auth.NewRepository(conn)
	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:       accountsRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}
	accountService, err := auth.NewAccountService(accountsRepo, cfg.Password)
	if err != nil {
		return routes.Dependencies{}, err
	}
	if cfg.Admin.Email != "" {
		created, err := accountService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return routes.Dependencies{}, err
		}
		if created {
			logg.Info(logg.WithField(ctx, "email", cfg.Admin.Email), "bootstrap admin account created")
		}
	}

	return routes.Dependencies{
		DB:        dbClient,
		Redis:     redisClient,
		Sessions:  sessionManager,
		Metrics:   metricsHandler,
		Auth:      authService,
		Accounts:  accountService,
		Catalog:   catalogService,
		Cart:      cartService,
		Checkout:  checkoutService,
		Orders:    ordersService,
		Invoices:  invoicesService,
		Analytics: analyticsService,
		Settings:  settingsService,
	}, nil
}
