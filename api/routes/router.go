package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexwaste/nexwaste-backend/api/controllers"
	"github.com/nexwaste/nexwaste-backend/api/middleware"
	"github.com/nexwaste/nexwaste-backend/internal/catalog"
	"github.com/nexwaste/nexwaste-backend/internal/geocode"
	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/internal/profiles"
	"github.com/nexwaste/nexwaste-backend/pkg/auth/session"
	"github.com/nexwaste/nexwaste-backend/pkg/config"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	"github.com/nexwaste/nexwaste-backend/pkg/metrics"
	"github.com/nexwaste/nexwaste-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Provider    identity.Provider
	Profiles    *profiles.Service
	Pickups     *pickups.Service
	Catalog     *catalog.Catalog
	Geocoder    *geocode.Client
	Metrics     *metrics.HTTPMetrics
	Registry    *prometheus.Registry
	StorePinger controllers.Pinger
}

// NewRouter assembles the portal API.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger, d.Metrics),
		middleware.CORS(),
	)

	cfg := d.Config
	logg := d.Logger

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"store": d.StorePinger,
			"redis": d.Redis,
		}))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", controllers.Catalog(d.Catalog))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).
				Post("/register", controllers.AuthRegister(d.Provider, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).
				Post("/register-agency", controllers.AuthRegisterAgency(d.Provider, d.Profiles, d.Geocoder, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
				Post("/login", controllers.AuthLogin(d.Provider, logg))
			r.With(middleware.Auth(cfg.JWT, d.Sessions, logg)).
				Post("/logout", controllers.AuthLogout(d.Provider, logg))
		})

		r.Route("/pickups", func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, d.Sessions, logg),
				middleware.RequireRole(enums.ActorRoleCustomer, logg),
			)
			r.Get("/", controllers.PickupList(d.Pickups, logg))
			r.Post("/", controllers.PickupCreate(d.Pickups, d.Profiles, logg))
			r.Get("/stream", controllers.PickupStream(d.Profiles, d.Pickups, logg, d.Metrics))
			r.Delete("/{pickupId}", controllers.PickupDelete(d.Pickups, logg))
		})

		r.Route("/partner", func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, d.Sessions, logg),
				middleware.RequireRole(enums.ActorRolePartner, logg),
			)
			r.Get("/tasks", controllers.PartnerTasks(d.Pickups, d.Profiles, d.Catalog, logg))
			r.Get("/tasks/stream", controllers.PartnerStream(d.Catalog, d.Profiles, d.Pickups, logg, d.Metrics))
			r.Post("/tasks/{pickupId}/status", controllers.PartnerUpdateStatus(d.Pickups, logg))
			r.Get("/stats", controllers.PartnerStats(d.Pickups, d.Profiles, d.Catalog, logg))
			r.Get("/categories", controllers.PartnerCategories(d.Catalog, d.Profiles, logg))
		})
	})

	return r
}
