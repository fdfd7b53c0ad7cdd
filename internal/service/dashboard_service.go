package service

import (
	"context"
	"fmt"
	"time"

	"teamperf/internal/domain"
	"teamperf/internal/performance"
	"teamperf/internal/repository"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

type dashboardService struct {
	members repository.MemberRepository
	teams   repository.TeamRepository
	ratings repository.RatingRepository
	cache   DashboardCache
	logger  *logger.Logger
	now     func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repos *repository.Repositories, cache DashboardCache, log *logger.Logger) DashboardService {
	return &dashboardService{
		members: repos.Member,
		teams:   repos.Team,
		ratings: repos.Rating,
		cache:   cache,
		logger:  log,
		now:     time.Now,
	}
}

// Organization serves the cached composition; trends depend on the caller and are applied per request
func (s *dashboardService) Organization(ctx context.Context, orgID string, prev performance.Previous) (*performance.Dashboard, error) {
	d, err := s.cache.Dashboard(ctx, DashboardKey{OrgID: orgID}, func(ctx context.Context) (*performance.Dashboard, error) {
		members, err := s.members.ListByOrganization(ctx, orgID)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		teams, err := s.teams.List(ctx, orgID)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		values, err := s.ratings.ValuesByOrganization(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return s.compose(members, teams, values), nil
	})
	if err != nil {
		return nil, err
	}
	performance.ApplyTrends(d, prev)
	return d, nil
}

func (s *dashboardService) Team(ctx context.Context, orgID, teamID string, prev performance.Previous) (*performance.Dashboard, error) {
	team, err := s.teams.GetByID(ctx, orgID, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apperrors.NewNotFoundError("Team not found")
	}

	d, err := s.cache.Dashboard(ctx, DashboardKey{OrgID: orgID, TeamID: teamID}, func(ctx context.Context) (*performance.Dashboard, error) {
		members, err := s.members.ListByTeam(ctx, orgID, teamID)
		if err != nil {
			return nil, fmt.Errorf("list team members: %w", err)
		}
		values, err := s.ratings.ValuesByTeam(ctx, orgID, teamID)
		if err != nil {
			return nil, err
		}
		return s.compose(members, []domain.Team{*team}, values), nil
	})
	if err != nil {
		return nil, err
	}
	performance.ApplyTrends(d, prev)
	return d, nil
}

func (s *dashboardService) compose(members []domain.Member, teams []domain.Team, values map[string][]int) *performance.Dashboard {
	scores := make([]performance.MemberScore, 0, len(members))
	for _, m := range members {
		scores = append(scores, performance.ScoreMember(m, values[m.ID]))
	}
	return performance.Compose(scores, teams, s.now())
}
