package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/counterpos/api/controllers"
	"github.com/angelmondragon/counterpos/api/middleware"
	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/pos"
	"github.com/angelmondragon/counterpos/internal/storage"
	"github.com/angelmondragon/counterpos/pkg/config"
	"github.com/angelmondragon/counterpos/pkg/logger"
	pkgredis "github.com/angelmondragon/counterpos/pkg/redis"
)

// NewRouter wires the counter API. idem may be nil, in which case checkout
// retries are not deduplicated; gatherer may be nil to hide /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	svc pos.Service,
	bus *events.Bus,
	ready storage.Pinger,
	idem pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.MenuList(svc, logg))
			r.Post("/", controllers.MenuCreate(svc, logg))
			r.Put("/{itemId}", controllers.MenuUpdate(svc, logg))
			r.Delete("/{itemId}", controllers.MenuDelete(svc, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svc, logg))
			r.Post("/items", controllers.CartAddItem(svc, logg))
			r.Patch("/items/{itemId}", controllers.CartChangeQuantity(svc, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(svc, logg))
			r.Post("/clear", controllers.CartClear(svc, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			idempotent := r.With(middleware.Idempotency(idem, logg))
			idempotent.Post("/pay", controllers.CheckoutPay(svc, logg))
			idempotent.Post("/print", controllers.CheckoutPrint(svc, logg))
			r.Get("/payment-code.png", controllers.CheckoutPaymentCode(svc, logg))
		})

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", controllers.BillsList(svc, logg))
			r.Get("/{billId}", controllers.BillDetail(svc, logg))
			r.Get("/{billId}/print", controllers.BillPrint(svc, logg))
		})

		r.Get("/events", controllers.EventsStream(bus, logg))
	})

	return r
}
