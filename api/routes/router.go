package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jewelryoclock/storefront-backend/api/controllers"
	"github.com/jewelryoclock/storefront-backend/api/middleware"
	"github.com/jewelryoclock/storefront-backend/internal/cart"
	"github.com/jewelryoclock/storefront-backend/internal/catalog"
	checkoutsvc "github.com/jewelryoclock/storefront-backend/internal/checkout"
	"github.com/jewelryoclock/storefront-backend/internal/describe"
	"github.com/jewelryoclock/storefront-backend/internal/identity"
	"github.com/jewelryoclock/storefront-backend/internal/orders"
	"github.com/jewelryoclock/storefront-backend/pkg/config"
	"github.com/jewelryoclock/storefront-backend/pkg/db"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
	"github.com/jewelryoclock/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	identityService identity.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	describeService describe.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(identityService, logg))
		r.Post("/login", controllers.AuthLogin(identityService, logg))
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/", controllers.CatalogList(catalogService, logg))
		r.Get("/stream", controllers.CatalogStream(redisClient, logg))
		r.Get("/{productId}", controllers.CatalogDetail(catalogService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/me", controllers.Me(identityService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleCustomer.String(), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartService, logg))
				r.Post("/items", controllers.CartAdd(cartService, logg))
				r.Patch("/items/{itemId}", controllers.CartSetQuantity(cartService, logg))
				r.Delete("/items/{itemId}", controllers.CartRemove(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(ordersService, logg))
				r.Get("/last", controllers.OrderLast(ordersService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(ordersService, logg))
			r.Post("/{orderId}/status", controllers.AdminAdvanceOrder(ordersService, logg))
		})

		r.Post("/describe", controllers.DescribeProduct(describeService, logg))
	})

	return r
}
