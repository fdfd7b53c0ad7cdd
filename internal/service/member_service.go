package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teamperf/internal/domain"
	"teamperf/internal/performance"
	"teamperf/internal/repository"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

const recentRatingsLimit = 10

type memberService struct {
	members repository.MemberRepository
	teams   repository.TeamRepository
	ratings repository.RatingRepository
	cache   DashboardCache
	logger  *logger.Logger
}

// NewMemberService creates a new member service
func NewMemberService(repos *repository.Repositories, cache DashboardCache, log *logger.Logger) MemberService {
	return &memberService{
		members: repos.Member,
		teams:   repos.Team,
		ratings: repos.Rating,
		cache:   cache,
		logger:  log,
	}
}

func (s *memberService) requireTeam(ctx context.Context, orgID, teamID string) error {
	team, err := s.teams.GetByID(ctx, orgID, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return apperrors.NewNotFoundError("Team not found")
	}
	return nil
}

func (s *memberService) ListByTeam(ctx context.Context, orgID, teamID string) ([]domain.Member, error) {
	if err := s.requireTeam(ctx, orgID, teamID); err != nil {
		return nil, err
	}
	return s.members.ListByTeam(ctx, orgID, teamID)
}

func (s *memberService) Get(ctx context.Context, orgID, id string) (*domain.Member, error) {
	return getMember(ctx, s.members, orgID, id)
}

// getMember is shared by every service that acts on a member
func getMember(ctx context.Context, members repository.MemberRepository, orgID, id string) (*domain.Member, error) {
	member, err := members.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.NewNotFoundError("Member not found")
	}
	return member, nil
}

func (s *memberService) Create(ctx context.Context, orgID, teamID string, req *domain.CreateMemberRequest) (*domain.Member, error) {
	if err := s.requireTeam(ctx, orgID, teamID); err != nil {
		return nil, err
	}
	member := &domain.Member{
		OrganizationID: orgID,
		TeamID:         teamID,
		Name:           strings.TrimSpace(req.Name),
		Title:          req.Title,
		Email:          req.Email,
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.NewConflictError("A member with that email already exists", err)
		}
		return nil, fmt.Errorf("create member: %w", err)
	}
	s.cache.InvalidateDashboards(ctx, orgID)
	return member, nil
}

func (s *memberService) Update(ctx context.Context, orgID, id string, req *domain.UpdateMemberRequest) (*domain.Member, error) {
	member, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Title != nil {
		member.Title = req.Title
	}
	if req.Email != nil {
		member.Email = req.Email
	}
	if req.TeamID != nil && *req.TeamID != member.TeamID {
		if err := s.requireTeam(ctx, orgID, *req.TeamID); err != nil {
			return nil, err
		}
		member.TeamID = *req.TeamID
	}

	if err := s.members.Update(ctx, member); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperrors.NewNotFoundError("Member not found")
		case errors.Is(err, domain.ErrDuplicate):
			return nil, apperrors.NewConflictError("A member with that email already exists", err)
		}
		return nil, fmt.Errorf("update member: %w", err)
	}
	s.cache.InvalidateDashboards(ctx, orgID)
	return member, nil
}

func (s *memberService) Delete(ctx context.Context, orgID, id string) error {
	deleted, err := s.members.SoftDelete(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Member not found")
	}
	s.cache.InvalidateDashboards(ctx, orgID)
	return nil
}

func (s *memberService) HardDelete(ctx context.Context, orgID, id string) error {
	deleted, err := s.members.HardDelete(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("hard delete member: %w", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Member not found")
	}
	s.cache.InvalidateDashboards(ctx, orgID)
	s.logger.WithFields(map[string]interface{}{
		"organization_id": orgID,
		"member_id":       id,
	}).Warn("Member hard deleted")
	return nil
}

func (s *memberService) Performance(ctx context.Context, orgID, id string) (*MemberPerformance, error) {
	member, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListByMember(ctx, member.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("list member ratings: %w", err)
	}

	recent := ratings
	if len(recent) > recentRatingsLimit {
		recent = recent[:recentRatingsLimit]
	}
	return &MemberPerformance{
		Member:        member,
		Score:         performance.ScoreMember(*member, performance.Values(ratings)),
		Categories:    performance.ByCategory(ratings),
		RecentRatings: recent,
	}, nil
}
