package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamperf/internal/config"
	"teamperf/internal/service/review"
	"teamperf/pkg/database"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
	"teamperf/pkg/redis"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:         "test",
		DatabaseURL:         "postgres://localhost/teamperf",
		AuthJWTSecret:       "secret",
		WebhookSecret:       "whsec_c2VjcmV0LWtleQ==",
		DBTxTimeout:         10 * time.Second,
		DashboardCacheTTL:   time.Minute,
		ReviewMinRatings:    5,
		ReviewMinCategories: 2,
		ReviewRateLimit:     3,
	}
}

func newManager() *metrics.Manager {
	return metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name        string
		withRedis   bool
		mutate      func(*config.Config)
		expectCache bool
		expectError bool
	}{
		{name: "with redis", withRedis: true, expectCache: true},
		{name: "without redis", withRedis: false, expectCache: false},
		{name: "without webhook secret", mutate: func(c *config.Config) { c.WebhookSecret = "" }},
		{name: "malformed webhook secret", mutate: func(c *config.Config) { c.WebhookSecret = "whsec_***" }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			var rc *redis.Client
			if tt.withRedis {
				mr := miniredis.RunT(t)
				client, err := redis.NewClient("redis://"+mr.Addr(), cfg.Environment, nil)
				require.NoError(t, err)
				t.Cleanup(func() { _ = client.Close() })
				rc = client
			}

			c, err := Build(context.Background(), cfg, logger.NewNop(), &database.PostgresDB{}, rc, newManager())
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.expectCache, c.Cache != nil)
			svc := c.Services
			for name, s := range map[string]interface{}{
				"auth": svc.Auth, "organization": svc.Organization, "team": svc.Team, "member": svc.Member,
				"catalog": svc.Catalog, "rating": svc.Rating, "feedback": svc.Feedback,
				"dashboard": svc.Dashboard, "review": svc.Review, "webhook": svc.Webhook,
			} {
				assert.NotNil(t, s, name)
			}
			_, hasRedisCheck := c.HealthChecks()["redis"]
			assert.Equal(t, tt.withRedis, hasRedisCheck)
		})
	}
}

func TestNewGenerator_DefaultsToTemplate(t *testing.T) {
	gen, err := newGenerator(context.Background(), testConfig(), logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &review.TemplateGenerator{}, gen)
}

func TestRouter_WebhookWithoutSecretIsRejected(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookSecret = ""
	c, err := Build(context.Background(), cfg, logger.NewNop(), &database.PostgresDB{}, nil, newManager())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Router("test").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/identity", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ExposesMetrics(t *testing.T) {
	c, err := Build(context.Background(), testConfig(), logger.NewNop(), &database.PostgresDB{}, nil, newManager())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Router("test").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "teamperf_")
}
