package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ezshop-backend/api/controllers"
	"github.com/angelmondragon/ezshop-backend/api/middleware"
	"github.com/angelmondragon/ezshop-backend/internal/cart"
	products "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/internal/reviews"
	"github.com/angelmondragon/ezshop-backend/pkg/config"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
	"github.com/angelmondragon/ezshop-backend/pkg/logger"
	"github.com/angelmondragon/ezshop-backend/pkg/metrics"
	"github.com/angelmondragon/ezshop-backend/pkg/redis"
)

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Cart     cart.Service
	Products products.Service
	Reviews  reviews.Service
}

// NewRouter wires middleware and routes. redisClient may be nil, which
// disables idempotency and rate limiting. registry may be nil, which
// disables request metrics and the scrape endpoint.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	services Services,
) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		cachePinger      controllers.Pinger
		idempotencyStore redis.IdempotencyStore
		rateLimitStore   redis.RateLimitStore
	)
	if redisClient != nil {
		cachePinger = redisClient
		idempotencyStore = redisClient
		rateLimitStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	if registry != nil && cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	}

	idempotent := middleware.Idempotency(idempotencyStore, logg)
	cartLimit := middleware.RateLimit(
		middleware.NewRateLimitPolicy("cart", cfg.RateLimit.CartWindow, cfg.RateLimit.CartLimit),
		rateLimitStore,
		logg,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		// customer
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleCustomer))

			r.Get("/cart", controllers.CartCurrent(services.Cart, logg))
			r.Get("/cart/history", controllers.CartHistory(services.Cart, logg))
			r.With(cartLimit).Post("/cart", controllers.CartAddProduct(services.Cart, logg))
			r.With(idempotent, cartLimit).Patch("/cart", controllers.CartCheckout(services.Cart, logg))
			r.With(cartLimit).Delete("/cart/products/{model}", controllers.CartRemoveProduct(services.Cart, logg))
			r.With(cartLimit).Delete("/cart/current", controllers.CartClear(services.Cart, logg))

			r.Post("/reviews/{model}", controllers.ReviewAdd(services.Reviews, logg))
			r.Delete("/reviews/{model}", controllers.ReviewDelete(services.Reviews, logg))
		})

		// admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin))

			r.Delete("/cart", controllers.CartDeleteAll(services.Cart, logg))
			r.Get("/cart/all", controllers.CartListAll(services.Cart, logg))
		})

		// manager and admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleManager, enums.RoleAdmin))

			r.With(idempotent).Post("/products", controllers.ProductRegisterArrival(services.Products, logg))
			r.Get("/products", controllers.ProductList(services.Products, logg))
			r.Delete("/products", controllers.ProductDeleteAll(services.Products, logg))
			r.Patch("/products/{model}", controllers.ProductChangeQuantity(services.Products, logg))
			r.With(idempotent).Patch("/products/{model}/sell", controllers.ProductSell(services.Products, logg))
			r.Delete("/products/{model}", controllers.ProductDelete(services.Products, logg))

			r.Delete("/reviews", controllers.ReviewDeleteAll(services.Reviews, logg))
			r.Delete("/reviews/{model}/all", controllers.ReviewDeleteForProduct(services.Reviews, logg))
		})

		// any authenticated role
		r.Get("/products/available", controllers.ProductListAvailable(services.Products, logg))
		r.Get("/products/{model}", controllers.ProductGet(services.Products, logg))
		r.Get("/reviews/{model}", controllers.ReviewList(services.Reviews, logg))
	})

	return r
}
