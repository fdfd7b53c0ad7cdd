package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamperf/internal/domain"
	"teamperf/internal/service/review"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
)

type stubLimiter struct {
	allow bool
	calls int
}

func (l *stubLimiter) Allow(_ context.Context, subject string) (*domain.RateLimitInfo, error) {
	l.calls++
	return &domain.RateLimitInfo{Subject: subject, Limit: 1, IsAllowed: l.allow, TTL: 30 * time.Minute}, nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, review.Input) (*domain.ReviewDocument, error) {
	return nil, errors.New("model unavailable")
}

var (
	q1Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q1End   = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	inQ1    = time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	author  = &domain.User{ID: "u1", ExternalID: "user_1"}
)

func newReviewService(f *fixture, gen review.Generator, limiter Limiter) (ReviewService, *metrics.Manager) {
	m := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
	return NewReviewService(f.repos, gen, limiter, m, logger.NewNop(), ReviewConfig{}), m
}

func q1() *domain.GenerateReviewRequest {
	return &domain.GenerateReviewRequest{PeriodStart: q1Start, PeriodEnd: q1End}
}

func TestReviewService_Generate(t *testing.T) {
	f := newFixture()
	f.rate("m1", "c1", inQ1, 5, 5, 4)
	f.rate("m1", "c2", inQ1, 4, 3)
	f.rate("m1", "c3", q1End.Add(time.Hour), 1, 1, 1) // outside the period
	limiter := &stubLimiter{allow: true}
	svc, m := newReviewService(f, review.NewTemplateGenerator(), limiter)

	rv, err := svc.Generate(context.Background(), testOrg, author, "m1", q1())
	require.NoError(t, err)

	assert.Equal(t, domain.ReviewDraft, rv.Status)
	assert.Equal(t, 1, rv.Version)
	assert.Equal(t, 5, rv.Document.RatingsConsidered)
	assert.Len(t, rv.Document.CategoryAssessments, 2)
	assert.Equal(t, "u1", *rv.CreatedBy)
	assert.Equal(t, 1, limiter.calls)
	assert.Equal(t, 1.0, counterValue(t, m, "teamperf_review_generations_total", map[string]string{"outcome": review.GeneratedByTemplate}))

	t.Run("regenerating the same period creates a new version", func(t *testing.T) {
		again, err := svc.Generate(context.Background(), testOrg, author, "m1", q1())
		require.NoError(t, err)
		assert.Equal(t, 2, again.Version)
		assert.Equal(t, domain.ReviewDraft, again.Status)
	})
}

// counterValue reads one counter series from the manager's registry
func counterValue(t *testing.T, m *metrics.Manager, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue series
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestReviewService_GenerateInsufficientData(t *testing.T) {
	f := newFixture()
	f.rate("m1", "c1", inQ1, 5, 4, 4)
	limiter := &stubLimiter{allow: true}
	svc, _ := newReviewService(f, review.NewTemplateGenerator(), limiter)

	rv, err := svc.Generate(context.Background(), testOrg, author, "m1", q1())

	assert.Nil(t, rv)
	var insufficient *domain.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 5, insufficient.RatingsRequired)
	assert.Equal(t, 3, insufficient.RatingsFound)
	assert.Equal(t, 2, insufficient.CategoriesRequired)
	assert.Equal(t, 1, insufficient.CategoriesFound)
	assert.Len(t, insufficient.Missing, 2)

	assert.Empty(t, f.reviews.reviews, "nothing is persisted")
	assert.Zero(t, limiter.calls, "refusals do not use up the rate limit")
}

func TestReviewService_GenerateGuards(t *testing.T) {
	f := newFixture()
	f.rate("m1", "c1", inQ1, 5, 5, 4)
	f.rate("m1", "c2", inQ1, 4, 3)

	t.Run("invalid period", func(t *testing.T) {
		svc, _ := newReviewService(f, review.NewTemplateGenerator(), &stubLimiter{allow: true})
		_, err := svc.Generate(context.Background(), testOrg, author, "m1", &domain.GenerateReviewRequest{PeriodStart: q1End, PeriodEnd: q1Start})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("unknown member", func(t *testing.T) {
		svc, _ := newReviewService(f, review.NewTemplateGenerator(), &stubLimiter{allow: true})
		_, err := svc.Generate(context.Background(), testOrg, author, "nobody", q1())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("rate limited", func(t *testing.T) {
		svc, _ := newReviewService(f, review.NewTemplateGenerator(), &stubLimiter{allow: false})
		_, err := svc.Generate(context.Background(), testOrg, author, "m1", q1())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
		assert.Empty(t, f.reviews.reviews)
	})

	t.Run("generator failure", func(t *testing.T) {
		svc, _ := newReviewService(f, failingGenerator{}, &stubLimiter{allow: true})
		_, err := svc.Generate(context.Background(), testOrg, author, "m1", q1())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
		assert.Empty(t, f.reviews.reviews)
	})
}

func seedReview(f *fixture, id string, status domain.ReviewStatus) {
	f.reviews.reviews[id] = &domain.Review{
		ID: id, OrganizationID: testOrg, MemberID: "m1",
		PeriodStart: q1Start, PeriodEnd: q1End, Version: 1, Status: status,
	}
}

func TestReviewService_Lifecycle(t *testing.T) {
	f := newFixture()
	seedReview(f, "r1", domain.ReviewDraft)
	svc, _ := newReviewService(f, review.NewTemplateGenerator(), &stubLimiter{allow: true})
	ctx := context.Background()

	published, err := svc.Publish(ctx, testOrg, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewPublished, published.Status)

	// Deleting a published review is refused and changes nothing
	err = svc.Delete(ctx, testOrg, "r1")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.True(t, errors.Is(err, domain.ErrReviewNotDraft))
	stored, err := svc.Get(ctx, testOrg, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewPublished, stored.Status)
	assert.Nil(t, stored.DeletedAt)

	_, err = svc.Publish(ctx, testOrg, "r1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "publishing twice is invalid")

	acknowledged, err := svc.Acknowledge(ctx, testOrg, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewAcknowledged, acknowledged.Status)

	_, err = svc.Publish(ctx, testOrg, "r1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "no way back from acknowledged")
}

func TestReviewService_AcknowledgeDraftIsInvalid(t *testing.T) {
	f := newFixture()
	seedReview(f, "r1", domain.ReviewDraft)
	svc, _ := newReviewService(f, review.NewTemplateGenerator(), &stubLimiter{allow: true})

	_, err := svc.Acknowledge(context.Background(), testOrg, "r1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, domain.ReviewDraft, f.reviews.reviews["r1"].Status)
}

func TestReviewService_DeleteDraft(t *testing.T) {
	f := newFixture()
	seedReview(f, "r1", domain.ReviewDraft)
	svc, _ := newReviewService(f, review.NewTemplateGenerator(), &stubLimiter{allow: true})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, testOrg, "r1"))
	assert.NotNil(t, f.reviews.reviews["r1"].DeletedAt, "soft deleted, not removed")

	_, err := svc.Get(ctx, testOrg, "r1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestReviewService_OtherOrganizationCannotSeeReview(t *testing.T) {
	f := newFixture()
	seedReview(f, "r1", domain.ReviewDraft)
	svc, _ := newReviewService(f, review.NewTemplateGenerator(), &stubLimiter{allow: true})

	err := svc.Delete(context.Background(), "org-2", "r1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Nil(t, f.reviews.reviews["r1"].DeletedAt)
}
