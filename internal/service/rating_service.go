package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"teamperf/internal/domain"
	"teamperf/internal/repository"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
)

type ratingService struct {
	ratings    repository.RatingRepository
	members    repository.MemberRepository
	activities repository.ActivityRepository
	cache      DashboardCache
	metrics    *metrics.Manager
	logger     *logger.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(repos *repository.Repositories, cache DashboardCache, m *metrics.Manager, log *logger.Logger) RatingService {
	return &ratingService{
		ratings:    repos.Rating,
		members:    repos.Member,
		activities: repos.Activity,
		cache:      cache,
		metrics:    m,
		logger:     log,
	}
}

func (s *ratingService) Record(ctx context.Context, orgID, raterID string, req *domain.CreateRatingRequest) (*domain.Rating, error) {
	if req.Value < domain.MinRatingValue || req.Value > domain.MaxRatingValue {
		return nil, apperrors.NewValidationError("Rating value must be between 1 and 5", map[string]interface{}{"value": "min=1,max=5"})
	}
	member, err := getMember(ctx, s.members, orgID, req.MemberID)
	if err != nil {
		return nil, err
	}
	activity, err := s.activities.GetByID(ctx, orgID, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, apperrors.NewNotFoundError("Activity not found")
	}
	if activity.TeamID != nil && *activity.TeamID != member.TeamID {
		return nil, apperrors.NewValidationError("Activity belongs to another team", map[string]interface{}{"activity_id": "team"})
	}

	rating := &domain.Rating{
		MemberID:   member.ID,
		ActivityID: activity.ID,
		Value:      req.Value,
	}
	if raterID != "" {
		rating.RaterID = &raterID
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("record rating: %w", err)
	}

	s.metrics.RatingRecorded()
	s.cache.InvalidateDashboards(ctx, orgID)
	s.logger.Debug("Rating recorded",
		zap.String("member_id", member.ID),
		zap.String("activity_id", activity.ID),
		zap.Int("value", rating.Value))
	return rating, nil
}

func (s *ratingService) ListByMember(ctx context.Context, orgID, memberID string, period *domain.Period) ([]domain.RatingDetail, error) {
	if period != nil && !period.Valid() {
		return nil, apperrors.NewValidationError("Invalid period: from must be before to and span at most 366 days", nil)
	}
	member, err := getMember(ctx, s.members, orgID, memberID)
	if err != nil {
		return nil, err
	}
	return s.ratings.ListByMember(ctx, member.ID, period)
}
