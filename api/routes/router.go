package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	analyticscontrollers "github.com/angelmondragon/storefront-backend/api/controllers/analytics"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/analytics"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/invoices"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Nil services answer with an internal error instead of panicking.
type Dependencies struct {
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Metrics  http.Handler

	Auth      auth.Service
	Accounts  auth.AccountService
	Catalog   catalog.Service
	Cart      cart.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Invoices  invoices.Service
	Analytics analytics.Service
	Settings  settings.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        middleware.RateLimiterStore
		pingers          = map[string]controllers.Pinger{}
	)
	if deps.DB != nil {
		pingers["db"] = deps.DB
	}
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		rateStore = deps.Redis
		pingers["redis"] = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})
	if cfg.FeatureFlags.Metrics && deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.StorefrontProducts(deps.Catalog, logg))
		r.Get("/{productId}", controllers.StorefrontProduct(deps.Catalog, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.StorefrontSession(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddLine(deps.Cart, logg))
			r.Patch("/items/{lineId}", cartcontrollers.CartUpdateQuantity(deps.Cart, logg))
			r.Delete("/items/{lineId}", cartcontrollers.CartRemoveLine(deps.Cart, logg))
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutBegin(deps.Checkout, logg))
			r.Post("/details", controllers.CheckoutDetails(deps.Checkout, logg))
			r.Post("/payment/confirm", controllers.CheckoutConfirmPayment(deps.Checkout, logg))
			r.Post("/delivery", controllers.CheckoutDelivery(deps.Checkout, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AdminLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AdminRefresh(deps.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Post("/logout", controllers.AdminLogout(deps.Auth, logg))
			r.Get("/me", controllers.AdminMe(deps.Accounts, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.Catalog, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
			r.Get("/export", controllers.AdminExportProducts(deps.Catalog, logg))
			r.Get("/{productId}", controllers.AdminGetProduct(deps.Catalog, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminDeactivateProduct(deps.Catalog, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.AdminList(deps.Orders, logg))
			r.Get("/export", ordercontrollers.AdminExport(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.AdminGet(deps.Orders, logg))
			r.Patch("/{orderId}/status", ordercontrollers.AdminUpdateStatus(deps.Orders, logg))
			r.Patch("/{orderId}/payment-status", ordercontrollers.AdminUpdatePaymentStatus(deps.Orders, logg))
			r.Get("/{orderId}/receipt", ordercontrollers.AdminReceipt(deps.Orders, deps.Settings, logg))
			r.Get("/{orderId}/steps", ordercontrollers.AdminSteps(deps.Checkout, logg))
			r.Get("/{orderId}/invoice", controllers.AdminOrderInvoice(deps.Invoices, logg))
			r.With(middleware.RequireRole(logg, enums.AccountRoleAdmin)).
				Delete("/{orderId}", ordercontrollers.AdminDelete(deps.Orders, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.AdminListInvoices(deps.Invoices, logg))
			r.Get("/export", controllers.AdminExportInvoices(deps.Invoices, logg))
			r.Post("/render", controllers.AdminRenderInvoice(logg))
			r.Get("/{invoiceId}/pdf", controllers.AdminInvoicePDF(deps.Invoices, logg))
			r.Get("/{invoiceId}/csv", controllers.AdminInvoiceCSV(deps.Invoices, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/summary", analyticscontrollers.Summary(deps.Analytics, logg))
			r.Get("/export", analyticscontrollers.Export(deps.Analytics, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.AccountRoleAdmin))
			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", controllers.AdminListAccounts(deps.Accounts, logg))
				r.Post("/", controllers.AdminCreateAccount(deps.Accounts, logg))
				r.Patch("/{accountId}", controllers.AdminUpdateAccount(deps.Accounts, logg))
				r.Post("/{accountId}/toggle", controllers.AdminToggleAccount(deps.Accounts, logg))
				r.Delete("/{accountId}", controllers.AdminDeleteAccount(deps.Accounts, logg))
			})
			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.AdminGetSettings(deps.Settings, logg))
				r.Put("/{key}", controllers.AdminPutSetting(deps.Settings, logg))
			})
		})
	})

	return r
}
