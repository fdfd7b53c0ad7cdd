package container

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"

	"teamperf/internal/config"
	"teamperf/internal/handler"
	"teamperf/internal/repository"
	"teamperf/internal/service"
	"teamperf/internal/service/auth"
	"teamperf/internal/service/review"
	"teamperf/pkg/database"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
	"teamperf/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Metrics      *metrics.Manager
	Repositories *repository.Repositories
	Services     *service.Services
	Cache        *service.CacheService // nil without Redis
}

// New connects to the backing stores and builds the container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseReadURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	c, err := Build(ctx, cfg, log, db, redisClient, metrics.NewManager())
	if err != nil {
		db.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}
	return c, nil
}

// Build wires repositories and services on top of already opened stores
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, db *database.PostgresDB, redisClient *redis.Client, m *metrics.Manager) (*Container, error) {
	repos := &repository.Repositories{
		Organization: repository.NewOrganizationRepository(db, cfg.DBTxTimeout),
		User:         repository.NewUserRepository(db),
		Team:         repository.NewTeamRepository(db, cfg.DBTxTimeout),
		Member:       repository.NewMemberRepository(db),
		Category:     repository.NewCategoryRepository(db),
		Activity:     repository.NewActivityRepository(db),
		Rating:       repository.NewRatingRepository(db),
		Feedback:     repository.NewFeedbackRepository(db),
		Review:       repository.NewReviewRepository(db, cfg.DBTxTimeout),
	}

	var (
		cache      service.DashboardCache = service.NoCache{}
		limiter    service.Limiter        = service.Unlimited{}
		cacheStore *service.CacheService
	)
	if redisClient != nil {
		cacheStore = service.NewCacheService(redisClient, m, log.Logger, cfg.DashboardCacheTTL)
		cache = cacheStore
		limiter = service.NewReviewRateLimiter(redisClient, cfg.ReviewRateLimit, log)
	}

	generator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var verifier *service.WebhookVerifier
	if cfg.WebhookSecret != "" {
		verifier, err = service.NewWebhookVerifier(cfg.WebhookSecret, service.DefaultWebhookTolerance)
		if err != nil {
			return nil, fmt.Errorf("webhook verifier: %w", err)
		}
	} else {
		log.Warn("WEBHOOK_SECRET not set, identity webhooks will be rejected")
	}

	services := &service.Services{
		Auth:         auth.NewService(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, repos.User, log),
		Organization: service.NewOrganizationService(repos.Organization, log),
		Team:         service.NewTeamService(repos.Team, cache, log),
		Member:       service.NewMemberService(repos, cache, log),
		Catalog:      service.NewCatalogService(repos, log),
		Rating:       service.NewRatingService(repos, cache, m, log),
		Feedback:     service.NewFeedbackService(repos, log),
		Dashboard:    service.NewDashboardService(repos, cache, log),
		Review: service.NewReviewService(repos, generator, limiter, m, log, service.ReviewConfig{
			MinRatings:    cfg.ReviewMinRatings,
			MinCategories: cfg.ReviewMinCategories,
		}),
		Webhook: service.NewWebhookService(verifier, repos.User, redisClient, m, log),
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Metrics:      m,
		Repositories: repos,
		Services:     services,
		Cache:        cacheStore,
	}, nil
}

// newGenerator prefers the Gemini model when a key is configured
func newGenerator(ctx context.Context, cfg *config.Config, log *logger.Logger) (review.Generator, error) {
	if cfg.GeminiAPIKey == "" {
		log.Info("GEMINI_API_KEY not set, reviews use the template generator")
		return review.NewTemplateGenerator(), nil
	}
	gen, err := review.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.ReviewModel, log)
	if err != nil {
		return nil, fmt.Errorf("review generator: %w", err)
	}
	log.WithField("model", cfg.ReviewModel).Info("Reviews use the Gemini generator")
	return gen, nil
}

// HealthChecks lists the stores /health reports on
func (c *Container) HealthChecks() map[string]handler.HealthChecker {
	checks := map[string]handler.HealthChecker{"database": c.DB}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient
	}
	return checks
}

// Router builds the HTTP surface over the container's services
func (c *Container) Router(version string) *chi.Mux {
	return handler.NewRouter(handler.RouterConfig{
		Services:       c.Services,
		Metrics:        c.Metrics,
		Logger:         c.Logger,
		Environment:    c.Config.Environment,
		Version:        version,
		AllowedOrigins: c.Config.AllowedOrigins,
		HealthChecks:   c.HealthChecks(),
	})
}
