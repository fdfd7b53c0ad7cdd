package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamperf/internal/domain"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
)

func TestRatingService_Record(t *testing.T) {
	tests := []struct {
		name     string
		req      domain.CreateRatingRequest
		wantType apperrors.ErrorType
	}{
		{name: "built-in activity", req: domain.CreateRatingRequest{MemberID: "m1", ActivityID: "a1", Value: 4}},
		{name: "organization activity", req: domain.CreateRatingRequest{MemberID: "m2", ActivityID: "a3", Value: 1}},
		{name: "value too low", req: domain.CreateRatingRequest{MemberID: "m1", ActivityID: "a1", Value: 0}, wantType: apperrors.ErrorTypeValidation},
		{name: "value too high", req: domain.CreateRatingRequest{MemberID: "m1", ActivityID: "a1", Value: 6}, wantType: apperrors.ErrorTypeValidation},
		{name: "unknown member", req: domain.CreateRatingRequest{MemberID: "zz", ActivityID: "a1", Value: 3}, wantType: apperrors.ErrorTypeNotFound},
		{name: "unknown activity", req: domain.CreateRatingRequest{MemberID: "m1", ActivityID: "zz", Value: 3}, wantType: apperrors.ErrorTypeNotFound},
		{name: "activity scoped to another team", req: domain.CreateRatingRequest{MemberID: "m1", ActivityID: "a2", Value: 3}, wantType: apperrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			m := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
			svc := NewRatingService(f.repos, f.cache, m, logger.NewNop())

			rating, err := svc.Record(context.Background(), testOrg, "u1", &tt.req)
			if tt.wantType != "" {
				assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
				assert.Empty(t, f.ratings.created)
				assert.Empty(t, f.cache.invalidated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.Value, rating.Value)
			require.NotNil(t, rating.RaterID)
			assert.Equal(t, "u1", *rating.RaterID)
			assert.Len(t, f.ratings.created, 1)
			assert.Equal(t, []string{testOrg}, f.cache.invalidated)
			assert.Equal(t, 1.0, counterValue(t, m, "teamperf_ratings_recorded_total", nil))
		})
	}
}

func TestRatingService_ListByMember(t *testing.T) {
	f := newFixture()
	f.rate("m1", "c1", inQ1, 4, 5)
	f.rate("m1", "c1", q1End, 1)
	svc := NewRatingService(f.repos, f.cache, nil, logger.NewNop())
	ctx := context.Background()

	all, err := svc.ListByMember(ctx, testOrg, "m1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inPeriod, err := svc.ListByMember(ctx, testOrg, "m1", &domain.Period{Start: q1Start, End: q1End})
	require.NoError(t, err)
	assert.Len(t, inPeriod, 2, "end is exclusive")

	_, err = svc.ListByMember(ctx, testOrg, "m1", &domain.Period{Start: q1End, End: q1Start})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.ListByMember(ctx, "org-2", "m1", nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestFeedbackService(t *testing.T) {
	f := newFixture()
	svc := NewFeedbackService(f.repos, logger.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, testOrg, "u1", "m1", &domain.CreateFeedbackRequest{Body: "   "})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.Create(ctx, testOrg, "u1", "nobody", &domain.CreateFeedbackRequest{Body: "Great demo"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	item, err := svc.Create(ctx, testOrg, "u1", "m1", &domain.CreateFeedbackRequest{Body: "  Great demo \n"})
	require.NoError(t, err)
	assert.Equal(t, "Great demo", item.Body)

	items, err := svc.ListByMember(ctx, testOrg, "m1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
