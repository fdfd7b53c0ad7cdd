package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teamperf/internal/domain"
	"teamperf/internal/repository"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

type teamService struct {
	teams  repository.TeamRepository
	cache  DashboardCache
	logger *logger.Logger
}

// NewTeamService creates a new team service
func NewTeamService(teams repository.TeamRepository, cache DashboardCache, log *logger.Logger) TeamService {
	return &teamService{teams: teams, cache: cache, logger: log}
}

func (s *teamService) List(ctx context.Context, orgID string) ([]domain.Team, error) {
	return s.teams.List(ctx, orgID)
}

func (s *teamService) Get(ctx context.Context, orgID, id string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apperrors.NewNotFoundError("Team not found")
	}
	return team, nil
}

func (s *teamService) Create(ctx context.Context, orgID string, req *domain.CreateTeamRequest) (*domain.Team, []domain.Member, error) {
	team := &domain.Team{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
	}
	members := make([]domain.Member, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, domain.Member{
			OrganizationID: orgID,
			Name:           strings.TrimSpace(m.Name),
			Title:          m.Title,
			Email:          m.Email,
		})
	}

	if err := s.teams.CreateWithMembers(ctx, team, members); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil, apperrors.NewConflictError("A team or member with that name already exists", err)
		}
		return nil, nil, fmt.Errorf("create team: %w", err)
	}

	s.cache.InvalidateDashboards(ctx, orgID)
	s.logger.WithFields(map[string]interface{}{
		"organization_id": orgID,
		"team_id":         team.ID,
		"members":         len(members),
	}).Info("Team created")
	return team, members, nil
}

func (s *teamService) Update(ctx context.Context, orgID, id string, req *domain.UpdateTeamRequest) (*domain.Team, error) {
	team, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		team.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		team.Description = *req.Description
	}

	if err := s.teams.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperrors.NewNotFoundError("Team not found")
		case errors.Is(err, domain.ErrDuplicate):
			return nil, apperrors.NewConflictError("A team with that name already exists", err)
		}
		return nil, fmt.Errorf("update team: %w", err)
	}

	s.cache.InvalidateDashboards(ctx, orgID)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, orgID, id string) error {
	deleted, err := s.teams.SoftDelete(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Team not found")
	}
	s.cache.InvalidateDashboards(ctx, orgID)
	s.logger.WithFields(map[string]interface{}{
		"organization_id": orgID,
		"team_id":         id,
	}).Info("Team deleted")
	return nil
}
