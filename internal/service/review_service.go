package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"teamperf/internal/domain"
	"teamperf/internal/repository"
	"teamperf/internal/service/review"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
)

// Review generation thresholds used when configuration leaves them unset
const (
	DefaultReviewMinRatings    = 5
	DefaultReviewMinCategories = 2
)

// ReviewConfig holds the review generation thresholds
type ReviewConfig struct {
	MinRatings    int
	MinCategories int
}

type reviewService struct {
	members   repository.MemberRepository
	ratings   repository.RatingRepository
	feedback  repository.FeedbackRepository
	reviews   repository.ReviewRepository
	generator review.Generator
	limiter   Limiter
	metrics   *metrics.Manager
	logger    *logger.Logger
	cfg       ReviewConfig
}

// NewReviewService creates a new review service
func NewReviewService(repos *repository.Repositories, generator review.Generator, limiter Limiter, m *metrics.Manager, log *logger.Logger, cfg ReviewConfig) ReviewService {
	if cfg.MinRatings <= 0 {
		cfg.MinRatings = DefaultReviewMinRatings
	}
	if cfg.MinCategories <= 0 {
		cfg.MinCategories = DefaultReviewMinCategories
	}
	return &reviewService{
		members:   repos.Member,
		ratings:   repos.Rating,
		feedback:  repos.Feedback,
		reviews:   repos.Review,
		generator: generator,
		limiter:   limiter,
		metrics:   m,
		logger:    log,
		cfg:       cfg,
	}
}

func (s *reviewService) Generate(ctx context.Context, orgID string, author *domain.User, memberID string, req *domain.GenerateReviewRequest) (*domain.Review, error) {
	period := domain.Period{Start: req.PeriodStart.UTC(), End: req.PeriodEnd.UTC()}
	if !period.Valid() {
		return nil, apperrors.NewValidationError("Invalid period: start must be before end and span at most 366 days", nil)
	}

	member, err := getMember(ctx, s.members, orgID, memberID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListByMember(ctx, member.ID, &period)
	if err != nil {
		return nil, fmt.Errorf("list ratings for review: %w", err)
	}
	feedback, err := s.feedback.ListByMember(ctx, member.ID, &period)
	if err != nil {
		return nil, fmt.Errorf("list feedback for review: %w", err)
	}

	categories := make(map[string]struct{})
	for _, r := range ratings {
		categories[r.CategoryID] = struct{}{}
	}
	if missing := domain.CheckReviewInput(len(ratings), len(categories), s.cfg.MinRatings, s.cfg.MinCategories); missing != nil {
		s.metrics.ReviewGenerated("insufficient_data")
		s.logger.Info("Review not generated, insufficient data",
			zap.String("member_id", member.ID),
			zap.Int("ratings", len(ratings)),
			zap.Int("categories", len(categories)))
		return nil, missing
	}

	limit, err := s.limiter.Allow(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("review rate limit: %w", err)
	}
	if !limit.IsAllowed {
		s.metrics.ReviewGenerated("rate_limited")
		return nil, apperrors.NewRateLimitError(fmt.Sprintf("Review generation limit reached, try again in %s", limit.TTL.Round(time.Second)))
	}

	doc, err := s.generator.Generate(ctx, review.Input{
		Member:   *member,
		Period:   period,
		Ratings:  ratings,
		Feedback: feedback,
	})
	if err != nil {
		s.metrics.ReviewGenerated("failed")
		return nil, apperrors.NewExternalError("Review generation failed", err)
	}

	rv := &domain.Review{
		OrganizationID: orgID,
		MemberID:       member.ID,
		PeriodStart:    period.Start,
		PeriodEnd:      period.End,
		Status:         domain.ReviewDraft,
		Document:       *doc,
		CreatedBy:      &author.ID,
	}
	if err := s.reviews.CreateVersion(ctx, rv); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	s.metrics.ReviewGenerated(doc.GeneratedBy)
	s.logger.Info("Review generated",
		zap.String("review_id", rv.ID),
		zap.String("member_id", member.ID),
		zap.Int("version", rv.Version),
		zap.String("generated_by", doc.GeneratedBy))
	return rv, nil
}

func (s *reviewService) ListByMember(ctx context.Context, orgID, memberID string) ([]domain.Review, error) {
	member, err := getMember(ctx, s.members, orgID, memberID)
	if err != nil {
		return nil, err
	}
	return s.reviews.ListByMember(ctx, orgID, member.ID)
}

func (s *reviewService) Get(ctx context.Context, orgID, id string) (*domain.Review, error) {
	rv, err := s.reviews.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, apperrors.NewNotFoundError("Review not found")
	}
	return rv, nil
}

func (s *reviewService) Publish(ctx context.Context, orgID, id string) (*domain.Review, error) {
	return s.transition(ctx, orgID, id, domain.ReviewPublished)
}

func (s *reviewService) Acknowledge(ctx context.Context, orgID, id string) (*domain.Review, error) {
	return s.transition(ctx, orgID, id, domain.ReviewAcknowledged)
}

func (s *reviewService) transition(ctx context.Context, orgID, id string, to domain.ReviewStatus) (*domain.Review, error) {
	current, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, invalidTransition(current.Status, to)
	}

	updated, err := s.reviews.Transition(ctx, orgID, id, current.Status, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, invalidTransition(current.Status, to)
		}
		return nil, fmt.Errorf("transition review: %w", err)
	}
	if updated == nil {
		// Someone else moved or deleted it between the read and the update
		return nil, apperrors.NewConflictError("Review changed concurrently, reload and retry", domain.ErrInvalidTransition)
	}

	s.metrics.ReviewTransitioned(string(to))
	s.logger.Info("Review status changed",
		zap.String("review_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)))
	return updated, nil
}

func invalidTransition(from, to domain.ReviewStatus) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("Cannot move review from %s to %s", from, to),
		map[string]interface{}{"status": string(from)},
	)
}

// Delete removes a review only while it is a draft; anything else is reported and left untouched
func (s *reviewService) Delete(ctx context.Context, orgID, id string) error {
	current, err := s.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !current.Status.Deletable() {
		return notDraft(current.Status)
	}

	deleted, err := s.reviews.SoftDeleteDraft(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if !deleted {
		return apperrors.NewConflictError("Review changed concurrently, reload and retry", domain.ErrReviewNotDraft)
	}
	s.logger.Info("Review deleted", zap.String("review_id", id))
	return nil
}

func notDraft(status domain.ReviewStatus) error {
	appErr := apperrors.NewValidationError(domain.ErrReviewNotDraft.Error(), map[string]interface{}{"status": string(status)})
	appErr.Internal = domain.ErrReviewNotDraft
	return appErr
}
