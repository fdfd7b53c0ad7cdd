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

type catalogService struct {
	categories repository.CategoryRepository
	activities repository.ActivityRepository
	teams      repository.TeamRepository
	logger     *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repos *repository.Repositories, log *logger.Logger) CatalogService {
	return &catalogService{
		categories: repos.Category,
		activities: repos.Activity,
		teams:      repos.Team,
		logger:     log,
	}
}

func (s *catalogService) ListCategories(ctx context.Context, orgID, userID string, includeHidden bool) ([]domain.Category, error) {
	return s.categories.List(ctx, orgID, userID, includeHidden)
}

func (s *catalogService) getCategory(ctx context.Context, orgID, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperrors.NewNotFoundError("Category not found")
	}
	return category, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, orgID string, req *domain.CreateCategoryRequest) (*domain.Category, error) {
	category := &domain.Category{
		OrganizationID: &orgID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.NewConflictError("A category with that name already exists", err)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// SetPreference merges the provided flags into the stored preference
func (s *catalogService) SetPreference(ctx context.Context, orgID, userID, categoryID string, req *domain.UpdateCategoryPreferenceRequest) (*domain.CategoryPreference, error) {
	if req.Favorite == nil && req.Hidden == nil {
		return nil, apperrors.NewValidationError("Provide favorite or hidden", nil)
	}
	if _, err := s.getCategory(ctx, orgID, categoryID); err != nil {
		return nil, err
	}

	pref, err := s.categories.GetPreference(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		pref = &domain.CategoryPreference{UserID: userID, CategoryID: categoryID}
	}
	if req.Favorite != nil {
		pref.Favorite = *req.Favorite
	}
	if req.Hidden != nil {
		pref.Hidden = *req.Hidden
	}

	if err := s.categories.SavePreference(ctx, pref); err != nil {
		return nil, fmt.Errorf("save category preference: %w", err)
	}
	return pref, nil
}

func (s *catalogService) ListActivities(ctx context.Context, orgID string, filter domain.ActivityFilter) ([]domain.Activity, error) {
	return s.activities.List(ctx, orgID, filter)
}

func (s *catalogService) CreateActivity(ctx context.Context, orgID string, req *domain.CreateActivityRequest) (*domain.Activity, error) {
	category, err := s.getCategory(ctx, orgID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if req.TeamID != nil {
		team, err := s.teams.GetByID(ctx, orgID, *req.TeamID)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, apperrors.NewNotFoundError("Team not found")
		}
	}

	activity := &domain.Activity{
		CategoryID:     category.ID,
		CategoryName:   category.Name,
		OrganizationID: &orgID,
		TeamID:         req.TeamID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.NewConflictError("An activity with that name already exists", err)
		}
		return nil, fmt.Errorf("create activity: %w", err)
	}
	return activity, nil
}

// DeleteActivity soft-deletes organization activities; built-ins read as not found
func (s *catalogService) DeleteActivity(ctx context.Context, orgID, id string) error {
	deleted, err := s.activities.SoftDelete(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("Activity not found")
	}
	return nil
}
