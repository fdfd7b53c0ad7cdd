package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"teamperf/internal/domain"
	"teamperf/internal/repository"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// DefaultTeamName names the first team when the caller does not
const DefaultTeamName = "General"

type organizationService struct {
	repo   repository.OrganizationRepository
	logger *logger.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(repo repository.OrganizationRepository, log *logger.Logger) OrganizationService {
	return &organizationService{repo: repo, logger: log}
}

func (s *organizationService) Create(ctx context.Context, owner *domain.User, req *domain.CreateOrganizationRequest) (*domain.OrganizationBootstrap, error) {
	if owner.OrgID() != "" {
		return nil, apperrors.NewConflictError("You already belong to an organization", domain.ErrAlreadyInOrg)
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if len(slug) < 2 {
		return nil, apperrors.NewValidationError("Organization name must contain letters or digits", map[string]interface{}{"slug": "min=2"})
	}
	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" {
		teamName = DefaultTeamName
	}

	result, err := s.repo.Bootstrap(ctx, owner, repository.BootstrapParams{
		Name:     strings.TrimSpace(req.Name),
		Slug:     slug,
		TeamName: teamName,
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyInOrg):
		return nil, apperrors.NewConflictError("You already belong to an organization", err)
	case errors.Is(err, domain.ErrDuplicate):
		return nil, apperrors.NewConflictError(fmt.Sprintf("Organization slug %q is taken", slug), err)
	case err != nil:
		return nil, fmt.Errorf("bootstrap organization: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"organization_id": result.Organization.ID,
		"owner_id":        owner.ID,
	}).Info("Organization created")
	return result, nil
}

// Slugify lowercases s and joins its letter and digit runs with single dashes
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	out := b.String()
	if len(out) > 60 {
		out = strings.TrimRight(out[:60], "-")
	}
	return out
}
