package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foreverlabs/storefront-backend/api/controllers"
	cartcontrollers "github.com/foreverlabs/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/foreverlabs/storefront-backend/api/controllers/orders"
	"github.com/foreverlabs/storefront-backend/api/middleware"
	"github.com/foreverlabs/storefront-backend/internal/cart"
	"github.com/foreverlabs/storefront-backend/internal/orders"
	"github.com/foreverlabs/storefront-backend/pkg/auth/session"
	"github.com/foreverlabs/storefront-backend/pkg/config"
	"github.com/foreverlabs/storefront-backend/pkg/db"
	"github.com/foreverlabs/storefront-backend/pkg/logger"
	"github.com/foreverlabs/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisPinger redis.Pinger,
	sessionChecker session.AccessSessionChecker,
	cartService cart.Service,
	ordersService orders.Service,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisPinger,
		}))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(cartService, logg))
			r.Delete("/", cartcontrollers.Clear(cartService, logg))
			r.Post("/entries", cartcontrollers.UpsertEntry(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Checkout(ordersService, logg))
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.Cancel(ordersService, logg))
			r.Post("/{orderId}/payment/verify", ordercontrollers.ConfirmPayment(ordersService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.AdminList(ordersService, logg))
			r.Patch("/{orderId}/status", ordercontrollers.AdminUpdateStatus(ordersService, logg))
		})
	})

	return r
}
