package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/upliftbridge/upliftbridge-backend/api/controllers"
	"github.com/upliftbridge/upliftbridge-backend/api/middleware"
	"github.com/upliftbridge/upliftbridge-backend/internal/funding"
	"github.com/upliftbridge/upliftbridge-backend/internal/needs"
	"github.com/upliftbridge/upliftbridge-backend/internal/pledges"
	"github.com/upliftbridge/upliftbridge-backend/internal/stories"
	"github.com/upliftbridge/upliftbridge-backend/internal/updates"
	"github.com/upliftbridge/upliftbridge-backend/pkg/config"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Needs   needs.Service
	Funding funding.Service
	Updates updates.Service
	Stories stories.Service
	Pledges pledges.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

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
			"database": deps.DB,
			"redis":    pingerOrNil(deps.Redis),
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Uploaded photos are served straight off local disk.
	uploadsDir := http.Dir(cfg.Uploads.Dir)
	r.Handle(cfg.Uploads.PublicPrefix+"/*",
		http.StripPrefix(cfg.Uploads.PublicPrefix+"/", http.FileServer(uploadsDir)))

	maxUploadBytes := int64(cfg.Uploads.MaxUploadMB) << 20

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/needs", func(r chi.Router) {
			r.Get("/", controllers.NeedList(deps.Needs, logg))
			r.Post("/", controllers.NeedCreate(deps.Needs, logg))
			r.Get("/submissions/{needID}", controllers.NeedSubmissionStatus(deps.Needs, logg))

			r.Route("/{needID}", func(r chi.Router) {
				r.Get("/", controllers.NeedDetail(deps.Needs, logg))
				r.Get("/payment", controllers.NeedPaymentRouting(deps.Needs, logg))
				r.Get("/updates", controllers.NeedUpdateList(deps.Updates, logg))
				r.Post("/pledges", controllers.PledgeCreate(deps.Pledges, logg))

				r.Route("/fund", func(r chi.Router) {
					r.Get("/", controllers.FundingQuote(deps.Funding, logg))
					r.Post("/", controllers.FundingCheckout(deps.Funding, logg))
					r.Get("/quote", controllers.FundingQuote(deps.Funding, logg))
					r.Get("/success", controllers.FundingSuccess(deps.Funding, logg))
				})
			})
		})

		r.Route("/stories", func(r chi.Router) {
			r.Get("/", controllers.StoryList(deps.Stories, logg))
			r.Get("/{storyID}", controllers.StoryDetail(deps.Stories, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminGate(cfg.Admin, adminStoreOrNil(deps.Redis), logg))

		r.Route("/needs", func(r chi.Router) {
			r.Get("/", controllers.AdminNeedList(deps.Needs, logg))

			r.Route("/{needID}", func(r chi.Router) {
				r.Get("/", controllers.AdminNeedDetail(deps.Needs, logg))
				r.Post("/approve", controllers.AdminNeedApprove(deps.Needs, logg))
				r.Post("/reject", controllers.AdminNeedReject(deps.Needs, logg))
				r.Post("/close", controllers.AdminNeedClose(deps.Needs, logg))

				r.Post("/photos", controllers.AdminNeedAddPhoto(deps.Needs, maxUploadBytes, logg))
				r.Delete("/photos/{photoID}", controllers.AdminNeedRemovePhoto(deps.Needs, logg))

				r.Get("/updates", controllers.AdminUpdateList(deps.Updates, logg))
				r.Post("/updates", controllers.AdminUpdateCreate(deps.Updates, logg))
				r.Patch("/updates/{updateID}", controllers.AdminUpdateSetVisibility(deps.Updates, logg))
				r.Delete("/updates/{updateID}", controllers.AdminUpdateDelete(deps.Updates, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Funding, logg))
			r.Post("/{orderID}/confirm-offsite", controllers.AdminOrderConfirmOffsite(deps.Funding, logg))
			r.Post("/{orderID}/reject-offsite", controllers.AdminOrderRejectOffsite(deps.Funding, logg))
		})

		r.Route("/pledges", func(r chi.Router) {
			r.Get("/", controllers.AdminPledgeList(deps.Pledges, logg))
			r.Post("/{pledgeID}/accept", controllers.AdminPledgeAccept(deps.Pledges, logg))
			r.Post("/{pledgeID}/decline", controllers.AdminPledgeDecline(deps.Pledges, logg))
			r.Post("/{pledgeID}/fulfill", controllers.AdminPledgeFulfill(deps.Pledges, logg))
		})

		r.Route("/stories", func(r chi.Router) {
			r.Get("/", controllers.AdminStoryList(deps.Stories, logg))
			r.Post("/", controllers.AdminStoryCreate(deps.Stories, logg))
			r.Put("/{storyID}", controllers.AdminStoryEdit(deps.Stories, logg))
			r.Patch("/{storyID}/publish", controllers.AdminStorySetPublished(deps.Stories, logg))
			r.Delete("/{storyID}", controllers.AdminStoryDelete(deps.Stories, logg))
		})
	})

	return r
}

// pingerOrNil avoids handing a typed nil to the readiness probe.
func pingerOrNil(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func adminStoreOrNil(client *redis.Client) middleware.AdminSessionStore {
	if client == nil {
		return nil
	}
	return client
}
