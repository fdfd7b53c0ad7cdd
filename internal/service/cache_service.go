package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"teamperf/internal/performance"
	"teamperf/pkg/metrics"
	"teamperf/pkg/redis"
)

// DashboardKey identifies a cached dashboard. An empty TeamID is the organization view.
type DashboardKey struct {
	OrgID  string
	TeamID string
}

// DashboardCache is a cache-aside store for composed dashboards
type DashboardCache interface {
	Dashboard(ctx context.Context, key DashboardKey, load func(ctx context.Context) (*performance.Dashboard, error)) (*performance.Dashboard, error)

	// InvalidateDashboards drops every cached dashboard of the organization before it returns
	InvalidateDashboards(ctx context.Context, orgID string)
}

// CacheService caches dashboards in Redis. Cache failures are logged and never fail a request.
//
// Entries are keyed by a per-organization generation. Invalidation bumps the generation,
// so a refill computed before the bump lands under a key no reader asks for.
type CacheService struct {
	redis   *redis.Client
	metrics *metrics.Manager
	logger  *zap.Logger
	ttl     time.Duration
	wg      sync.WaitGroup
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, m *metrics.Manager, logger *zap.Logger, ttl time.Duration) *CacheService {
	if ttl <= 0 {
		ttl = redis.TTLDashboard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		redis:   redisClient,
		metrics: m,
		logger:  logger,
		ttl:     ttl,
	}
}

func (c *CacheService) keyFor(k DashboardKey, gen int64) string {
	if k.TeamID == "" {
		return c.redis.KeyBuilder.KeyDashboard(k.OrgID, gen)
	}
	return c.redis.KeyBuilder.KeyTeamDashboard(k.OrgID, gen, k.TeamID)
}

// generation reads the organization's current generation; a missing counter is generation 0
func (c *CacheService) generation(ctx context.Context, orgID string) (int64, error) {
	raw, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyDashboardGeneration(orgID))
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// Dashboard returns the cached dashboard or loads, returns and caches it in the background
func (c *CacheService) Dashboard(ctx context.Context, k DashboardKey, load func(ctx context.Context) (*performance.Dashboard, error)) (*performance.Dashboard, error) {
	// Read before load so a concurrent invalidation retires whatever this call writes
	gen, err := c.generation(ctx, k.OrgID)
	if err != nil {
		c.metrics.CacheLookup("error")
		c.logger.Warn("Dashboard generation unavailable, bypassing cache",
			zap.String("organization_id", k.OrgID),
			zap.Error(err))
		return load(ctx)
	}
	cacheKey := c.keyFor(k, gen)

	cached, err := c.redis.Get(ctx, cacheKey)
	switch {
	case err == nil && cached != "":
		var d performance.Dashboard
		if jsonErr := json.Unmarshal([]byte(cached), &d); jsonErr == nil {
			c.metrics.CacheLookup("hit")
			c.logger.Debug("Dashboard cache hit", zap.String("key", cacheKey))
			return &d, nil
		} else {
			c.metrics.CacheLookup("corrupt")
			c.logger.Warn("Dashboard cache corrupted, falling back to database",
				zap.String("key", cacheKey),
				zap.Error(jsonErr))
		}
	case errors.Is(err, redis.Nil) || err == nil:
		c.metrics.CacheLookup("miss")
		c.logger.Debug("Dashboard cache miss", zap.String("key", cacheKey))
	default:
		c.metrics.CacheLookup("error")
		c.logger.Warn("Dashboard cache error, falling back to database",
			zap.String("key", cacheKey),
			zap.Error(err))
	}

	d, err := load(ctx)
	if err != nil {
		return nil, err
	}

	// Encode now; the caller may change d once we return
	data, err := json.Marshal(d)
	if err != nil {
		c.logger.Error("Failed to marshal dashboard for caching", zap.String("key", cacheKey), zap.Error(err))
		return d, nil
	}
	c.wg.Add(1)
	go c.cacheAsync(cacheKey, data)

	return d, nil
}

// InvalidateDashboards bumps the organization's generation, then sweeps the retired entries.
// Only the sweep may fail quietly: leftovers are unreachable and expire with their TTL.
func (c *CacheService) InvalidateDashboards(ctx context.Context, orgID string) {
	ctx = context.WithoutCancel(ctx)
	gen, err := c.redis.Incr(ctx, c.redis.KeyBuilder.KeyDashboardGeneration(orgID))
	if err != nil {
		c.logger.Error("Failed to invalidate dashboard caches",
			zap.String("organization_id", orgID),
			zap.Error(err))
		return
	}

	retired := gen - 1
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyDashboard(orgID, retired)); err != nil {
		c.logger.Warn("Failed to sweep retired dashboard", zap.String("organization_id", orgID), zap.Error(err))
	}
	if err := c.redis.InvalidatePattern(ctx, c.redis.KeyBuilder.KeyTeamDashboards(orgID, retired)); err != nil {
		c.logger.Warn("Failed to sweep retired team dashboards", zap.String("organization_id", orgID), zap.Error(err))
	}
	c.logger.Debug("Dashboard caches invalidated",
		zap.String("organization_id", orgID),
		zap.Int64("generation", gen))
}

// Wait blocks until background cache writes finish
func (c *CacheService) Wait() {
	c.wg.Wait()
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

func (c *CacheService) cacheAsync(cacheKey string, data []byte) {
	defer c.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.redis.Set(ctx, cacheKey, string(data), c.ttl); err != nil {
		c.logger.Error("Failed to cache dashboard",
			zap.String("key", cacheKey),
			zap.Error(err))
		return
	}
	c.logger.Debug("Dashboard cached successfully", zap.String("key", cacheKey))
}

var (
	_ DashboardCache = (*CacheService)(nil)
	_ DashboardCache = NoCache{}
)

// NoCache composes every dashboard on demand; used when Redis is not configured
type NoCache struct{}

func (NoCache) Dashboard(ctx context.Context, _ DashboardKey, load func(ctx context.Context) (*performance.Dashboard, error)) (*performance.Dashboard, error) {
	return load(ctx)
}

func (NoCache) InvalidateDashboards(context.Context, string) {}
