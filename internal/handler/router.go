package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"teamperf/internal/middleware"
	"teamperf/internal/service"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
)

// RouterConfig carries everything the HTTP surface needs
type RouterConfig struct {
	Services       *service.Services
	Metrics        *metrics.Manager
	Logger         *logger.Logger
	Environment    string
	Version        string
	AllowedOrigins []string
	HealthChecks   map[string]HealthChecker
	RequestTimeout time.Duration
}

// NewRouter mounts every route behind the shared middleware stack
func NewRouter(cfg RouterConfig) *chi.Mux {
	log := cfg.Logger
	svc := cfg.Services
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Observe(cfg.Metrics, log))
	r.Use(middleware.CORS(corsConfig, log))
	r.Use(recoverer(log))
	r.Use(chiMiddleware.Compress(5))
	r.Use(timeout(cfg.RequestTimeout, log))

	healthHandler := NewHealthHandler(cfg.HealthChecks, cfg.Version, log)
	webhookHandler := NewWebhookHandler(svc.Webhook, log)
	orgHandler := NewOrganizationHandler(svc.Organization, log)
	teamHandler := NewTeamHandler(svc.Team, svc.Member, log)
	memberHandler := NewMemberHandler(svc.Member, svc.Rating, svc.Feedback, log)
	catalogHandler := NewCatalogHandler(svc.Catalog, log)
	ratingHandler := NewRatingHandler(svc.Rating, log)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, log)
	reviewHandler := NewReviewHandler(svc.Review, log)
	debugHandler := NewDebugHandler(svc.Member, cfg.Environment, log)

	r.Get("/health", healthHandler.Check)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/webhooks/identity", webhookHandler.Identity)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(svc.Auth, log))

			r.Get("/me", orgHandler.Me)
			r.Post("/organizations", orgHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOrganization(log))

				r.Get("/dashboard", dashboardHandler.Organization)

				r.Route("/teams", func(r chi.Router) {
					r.Get("/", teamHandler.List)
					r.Post("/", teamHandler.Create)
					r.Route("/{teamId}", func(r chi.Router) {
						r.Get("/", teamHandler.Get)
						r.Put("/", teamHandler.Update)
						r.Delete("/", teamHandler.Delete)
						r.Get("/dashboard", dashboardHandler.Team)
						r.Get("/members", teamHandler.ListMembers)
						r.Post("/members", teamHandler.CreateMember)
					})
				})

				r.Route("/members/{memberId}", func(r chi.Router) {
					r.Get("/", memberHandler.Get)
					r.Put("/", memberHandler.Update)
					r.Delete("/", memberHandler.Delete)
					r.Get("/performance", memberHandler.Performance)
					r.Get("/ratings", memberHandler.ListRatings)
					r.Get("/feedback", memberHandler.ListFeedback)
					r.Post("/feedback", memberHandler.CreateFeedback)
					r.Get("/reviews", reviewHandler.ListByMember)
					r.Post("/reviews", reviewHandler.Generate)
				})

				r.Get("/categories", catalogHandler.ListCategories)
				r.Post("/categories", catalogHandler.CreateCategory)
				r.Put("/categories/{categoryId}/preference", catalogHandler.SetPreference)

				r.Get("/activities", catalogHandler.ListActivities)
				r.Post("/activities", catalogHandler.CreateActivity)
				r.Delete("/activities/{activityId}", catalogHandler.DeleteActivity)

				r.Post("/ratings", ratingHandler.Create)

				r.Route("/reviews/{reviewId}", func(r chi.Router) {
					r.Get("/", reviewHandler.Get)
					r.Delete("/", reviewHandler.Delete)
					r.Post("/publish", reviewHandler.Publish)
					r.Post("/acknowledge", reviewHandler.Acknowledge)
				})

				if debugHandler.Enabled() {
					r.Delete("/debug/members/{memberId}", debugHandler.HardDeleteMember)
				}
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, log, errors.NewNotFoundError("Endpoint not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		appErr := errors.NewValidationError("Method not allowed", nil)
		appErr.StatusCode = http.StatusMethodNotAllowed
		respondError(w, r, log, appErr)
	})

	log.Info("Router configured")
	return r
}
