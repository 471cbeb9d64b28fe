package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pickpackhq/pickpack-backend/api/controllers"
	approvalcontrollers "github.com/pickpackhq/pickpack-backend/api/controllers/approval"
	catalogcontrollers "github.com/pickpackhq/pickpack-backend/api/controllers/catalog"
	ordercontrollers "github.com/pickpackhq/pickpack-backend/api/controllers/orders"
	packingcontrollers "github.com/pickpackhq/pickpack-backend/api/controllers/packing"
	pickingcontrollers "github.com/pickpackhq/pickpack-backend/api/controllers/picking"
	scancontrollers "github.com/pickpackhq/pickpack-backend/api/controllers/scan"
	"github.com/pickpackhq/pickpack-backend/api/middleware"
	internalcatalog "github.com/pickpackhq/pickpack-backend/internal/catalog"
	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	internalscan "github.com/pickpackhq/pickpack-backend/internal/scan"
	"github.com/pickpackhq/pickpack-backend/pkg/config"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
	pkgredis "github.com/pickpackhq/pickpack-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database controllers.Pinger,
	redisClient *pkgredis.Client,
	fulfillmentSvc fulfillment.Service,
	catalogSvc internalcatalog.Service,
	scanResolver *internalscan.Resolver,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	adminOnly := middleware.RequireRole(string(enums.ActorRoleAdmin), logg)
	scanRoles := middleware.RequireAnyRole(logg, string(enums.ActorRolePicker), string(enums.ActorRoleAdmin))

	// Typed nils would defeat the downstream nil checks.
	var idempotencyStore pkgredis.IdempotencyStore
	var cachePinger controllers.Pinger
	var rateLimitStore pkgredis.RateLimitStore
	if redisClient != nil {
		idempotencyStore = redisClient
		cachePinger = redisClient
		rateLimitStore = redisClient
	}

	// Scanners fire faster than humans tap buttons, so only the scan surface
	// carries a throttle.
	scanPolicy := middleware.NewRateLimitPolicy("scan", cfg.Scan.RateLimitWindow, cfg.Scan.RateLimit)
	scanThrottle := middleware.RateLimit(scanPolicy, rateLimitStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cachePinger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(fulfillmentSvc, logg))
			r.With(adminOnly).Post("/import", ordercontrollers.Import(fulfillmentSvc, logg))

			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(fulfillmentSvc, logg))

				r.Post("/picking/start", pickingcontrollers.Start(fulfillmentSvc, logg))
				r.Post("/picking/complete", pickingcontrollers.Complete(fulfillmentSvc, logg))
				r.Post("/totes", pickingcontrollers.AssignTotes(fulfillmentSvc, logg))

				r.Post("/packing/start", packingcontrollers.Start(fulfillmentSvc, logg))
				r.Post("/packing/complete", packingcontrollers.Complete(fulfillmentSvc, logg))
				r.Post("/deliver", packingcontrollers.Deliver(fulfillmentSvc, logg))

				r.With(scanRoles, scanThrottle).Post("/scans", scancontrollers.Scan(scanResolver, logg))
				r.With(scanRoles, scanThrottle).Get("/scans/stream", scancontrollers.Stream(scanResolver, logg))

				r.With(adminOnly).Post("/approval/finalize", approvalcontrollers.Finalize(fulfillmentSvc, logg))

				r.Route("/items/{itemID}", func(r chi.Router) {
					r.Post("/pick", pickingcontrollers.PickPlus(fulfillmentSvc, logg))
					r.Post("/unpick", pickingcontrollers.PickMinus(fulfillmentSvc, logg))
					r.Post("/flag", pickingcontrollers.Flag(fulfillmentSvc, logg))
					r.Post("/substitute", pickingcontrollers.Substitute(fulfillmentSvc, logg))
					r.Post("/undo", pickingcontrollers.Undo(fulfillmentSvc, logg))

					r.Post("/pack", packingcontrollers.PackPlus(fulfillmentSvc, logg))
					r.Post("/unpack", packingcontrollers.PackMinus(fulfillmentSvc, logg))

					r.Get("/substitutes", catalogcontrollers.Candidates(catalogSvc, fulfillmentSvc, logg))
					r.Post("/substitutes", catalogcontrollers.Choose(catalogSvc, logg))

					r.With(adminOnly).Post("/approve", approvalcontrollers.ApproveItem(fulfillmentSvc, logg))
				})
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/barcodes/{barcode}", catalogcontrollers.LookupBarcode(catalogSvc, logg))
			r.With(adminOnly).Post("/products/sync", catalogcontrollers.SyncProduct(catalogSvc, logg))
		})
	})

	return r
}
