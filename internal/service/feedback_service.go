package service

import (
	"context"
	"fmt"
	"strings"

	"teamperf/internal/domain"
	"teamperf/internal/repository"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

type feedbackService struct {
	feedback repository.FeedbackRepository
	members  repository.MemberRepository
	logger   *logger.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(repos *repository.Repositories, log *logger.Logger) FeedbackService {
	return &feedbackService{feedback: repos.Feedback, members: repos.Member, logger: log}
}

func (s *feedbackService) Create(ctx context.Context, orgID, authorID, memberID string, req *domain.CreateFeedbackRequest) (*domain.Feedback, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("Feedback body is required", map[string]interface{}{"body": "required"})
	}
	member, err := getMember(ctx, s.members, orgID, memberID)
	if err != nil {
		return nil, err
	}

	item := &domain.Feedback{MemberID: member.ID, Body: body}
	if authorID != "" {
		item.AuthorID = &authorID
	}
	if err := s.feedback.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return item, nil
}

func (s *feedbackService) ListByMember(ctx context.Context, orgID, memberID string) ([]domain.Feedback, error) {
	member, err := getMember(ctx, s.members, orgID, memberID)
	if err != nil {
		return nil, err
	}
	return s.feedback.ListByMember(ctx, member.ID, nil)
}
