package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ersha-ecosystem/storefront/api/controllers"
	"github.com/ersha-ecosystem/storefront/api/middleware"
	checkoutsvc "github.com/ersha-ecosystem/storefront/internal/checkout"
	"github.com/ersha-ecosystem/storefront/internal/notifications"
	"github.com/ersha-ecosystem/storefront/internal/verification"
	"github.com/ersha-ecosystem/storefront/pkg/config"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
	"github.com/ersha-ecosystem/storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisPinger redis.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	carts controllers.CartSessions,
	flows controllers.CheckoutFlows,
	logistics controllers.LogisticsLister,
	checkoutService checkoutsvc.Service,
	verificationService verification.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, redisPinger, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/config", controllers.PublicConfig(cfg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(carts, logg))
			r.Delete("/", controllers.CartClear(carts, logg))
			r.Post("/items", controllers.CartAddItem(carts, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(carts, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(carts, logg))
		})

		r.Get("/logistics/providers", controllers.LogisticsProviders(logistics, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutPrepare(carts, checkoutService, logg))
			r.Post("/", controllers.CheckoutSubmit(carts, flows, checkoutService, logg))
			r.Get("/pending/{txRef}", controllers.CheckoutPending(checkoutService, logg))
		})

		r.Route("/verification", func(r chi.Router) {
			r.Get("/authorize", controllers.VerificationAuthorize(verificationService, logg))
			r.Get("/callback", controllers.VerificationCallback(verificationService, cfg.Verification.ReturnURL(cfg.App.BaseURL), logg))
		})

		r.Get("/notifications", controllers.NotificationsList(notificationsService, logg))
	})

	return r
}
