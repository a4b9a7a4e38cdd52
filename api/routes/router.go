package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/florista/bouquet-bff/api/controllers"
	"github.com/florista/bouquet-bff/api/middleware"
	"github.com/florista/bouquet-bff/internal/admin"
	"github.com/florista/bouquet-bff/internal/auth"
	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/cart"
	"github.com/florista/bouquet-bff/internal/catalog"
	"github.com/florista/bouquet-bff/internal/orders"
	"github.com/florista/bouquet-bff/internal/payments"
	"github.com/florista/bouquet-bff/pkg/auth/session"
	"github.com/florista/bouquet-bff/pkg/config"
	"github.com/florista/bouquet-bff/pkg/enums"
	"github.com/florista/bouquet-bff/pkg/logger"
	"github.com/florista/bouquet-bff/pkg/metrics"
	"github.com/florista/bouquet-bff/pkg/redis"
)

// Services groups the domain services the HTTP layer dispatches to.
type Services struct {
	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Orders   orders.Service
	Payments payments.Service
	Admin    admin.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessions session.Reader,
	upstream *backend.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// Typed nil pointers must not leak into the middleware interfaces.
	var (
		pinger    redis.Pinger
		limiter   redis.RateLimiter
		idemStore redis.IdempotencyStore
	)
	if redisClient != nil {
		pinger, limiter, idemStore = redisClient, redisClient, redisClient
	}
	idempotent := middleware.Idempotency(idemStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pinger, breakers(upstream)))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	authenticate := middleware.Auth(cfg.JWT, sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, sessions, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
			r.With(authenticate).Get("/me", controllers.AuthMe(svcs.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.CatalogListProducts(svcs.Catalog, logg))
				r.Get("/popular", controllers.CatalogPopular(svcs.Catalog, logg))
				r.Get("/{productID}", controllers.CatalogGetProduct(svcs.Catalog, logg))
				r.Get("/{productID}/recommendations", controllers.CatalogRecommendations(svcs.Catalog, logg))
			})
			r.Get("/categories", controllers.CatalogCategories(svcs.Catalog, logg))
			r.Get("/discounts", controllers.CatalogDiscounts(svcs.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/recommendations", controllers.CatalogRecommendations(svcs.Catalog, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
				r.Put("/items/{itemID}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(svcs.Cart, logg))
			})

			r.Route("/pickup", func(r chi.Router) {
				r.Get("/options", controllers.PickupOptions(svcs.Orders, logg))
				r.Get("/validate", controllers.PickupValidate(svcs.Orders, logg))
			})
			r.With(idempotent).Post("/checkout", controllers.Checkout(svcs.Orders, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.OrdersGet(svcs.Orders, logg))
				r.With(idempotent).Post("/{orderID}/cancel", controllers.OrdersCancel(svcs.Orders, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.PaymentsCreate(svcs.Payments, logg))
				r.Get("/orders/{orderID}", controllers.PaymentsStatus(svcs.Payments, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Get("/resources", controllers.AdminResources())
			r.Post("/cache/{resource}/purge", controllers.AdminPurgeCache(svcs.Catalog, logg))
			r.With(idempotent).Put("/orders/{orderID}/status", controllers.AdminUpdateOrderStatus(svcs.Admin, logg))
			r.Route("/{resource}", func(r chi.Router) {
				r.Get("/", controllers.AdminList(svcs.Admin, logg))
				r.Post("/", controllers.AdminCreate(svcs.Admin, logg))
				r.Get("/{id}", controllers.AdminGet(svcs.Admin, logg))
				r.Put("/{id}", controllers.AdminUpdate(svcs.Admin, logg))
				r.Delete("/{id}", controllers.AdminDelete(svcs.Admin, logg))
			})
		})
	})

	return otelhttp.NewHandler(r, "bouquet-bff",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return !strings.HasPrefix(req.URL.Path, "/health") && req.URL.Path != "/metrics"
		}),
	)
}

type breakerReporter interface {
	BreakerStates() map[backend.Service]gobreaker.State
}

func breakers(upstream *backend.Client) breakerReporter {
	if upstream == nil {
		return nil
	}
	return upstream
}
