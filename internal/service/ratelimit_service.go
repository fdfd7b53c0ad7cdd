package service

import (
	"context"
	"time"

	"teamperf/internal/domain"
	"teamperf/pkg/logger"
	"teamperf/pkg/redis"
)

// Limiter decides whether a subject may perform one more call in the current window
type Limiter interface {
	Allow(ctx context.Context, subject string) (*domain.RateLimitInfo, error)
}

// RateLimiter is a fixed window counter in Redis
type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
	key    func(subject string) string
	logger *logger.Logger
}

// NewReviewRateLimiter limits review generations per user. A limit of zero or less disables limiting.
func NewReviewRateLimiter(redisClient *redis.Client, limit int64, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.NewNop()
	}
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: redis.TTLReviewRateWindow,
		key:    redisClient.KeyBuilder.KeyReviewRateLimit,
		logger: log,
	}
}

// Allow counts the call. Redis failures let the call through.
func (l *RateLimiter) Allow(ctx context.Context, subject string) (*domain.RateLimitInfo, error) {
	info := &domain.RateLimitInfo{Subject: subject, Limit: l.limit, IsAllowed: true}
	if l.limit <= 0 {
		return info, nil
	}

	count, ttl, err := l.redis.IncrWindow(ctx, l.key(subject), l.window)
	if err != nil {
		l.logger.WithError(err).WithField("subject", subject).Warn("Rate limit check failed, allowing request")
		return info, nil
	}

	info.RequestCount = count
	info.TTL = ttl
	info.IsAllowed = count <= l.limit
	if !info.IsAllowed {
		l.logger.WithFields(map[string]interface{}{
			"subject":       subject,
			"request_count": count,
		}).Warn("Rate limit exceeded")
	}
	return info, nil
}

// Unlimited allows every call; used when Redis is not configured
type Unlimited struct{}

func (Unlimited) Allow(_ context.Context, subject string) (*domain.RateLimitInfo, error) {
	return &domain.RateLimitInfo{Subject: subject, IsAllowed: true}, nil
}
