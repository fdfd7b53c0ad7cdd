package service

import (
	"context"
	"net/http"

	"teamperf/internal/domain"
	"teamperf/internal/performance"
)

// Services return *errors.AppError for decisions they make themselves and wrapped
// domain sentinels for repository outcomes; handlers classify both.

// AuthService defines session authentication
type AuthService interface {
	// Authenticate validates a session token and returns the live local user it belongs to
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// OrganizationService defines tenant bootstrap
type OrganizationService interface {
	// Create makes the organization, its first team, and the caller its owner in one transaction
	Create(ctx context.Context, owner *domain.User, req *domain.CreateOrganizationRequest) (*domain.OrganizationBootstrap, error)
}

// TeamService defines team management
type TeamService interface {
	List(ctx context.Context, orgID string) ([]domain.Team, error)
	Get(ctx context.Context, orgID, id string) (*domain.Team, error)
	Create(ctx context.Context, orgID string, req *domain.CreateTeamRequest) (*domain.Team, []domain.Member, error)
	Update(ctx context.Context, orgID, id string, req *domain.UpdateTeamRequest) (*domain.Team, error)
	Delete(ctx context.Context, orgID, id string) error
}

// MemberService defines member management
type MemberService interface {
	ListByTeam(ctx context.Context, orgID, teamID string) ([]domain.Member, error)
	Get(ctx context.Context, orgID, id string) (*domain.Member, error)
	Create(ctx context.Context, orgID, teamID string, req *domain.CreateMemberRequest) (*domain.Member, error)
	Update(ctx context.Context, orgID, id string, req *domain.UpdateMemberRequest) (*domain.Member, error)
	Delete(ctx context.Context, orgID, id string) error

	// HardDelete physically removes a member; only reachable outside production
	HardDelete(ctx context.Context, orgID, id string) error

	Performance(ctx context.Context, orgID, id string) (*MemberPerformance, error)
}

// CatalogService defines categories, preferences and activities
type CatalogService interface {
	ListCategories(ctx context.Context, orgID, userID string, includeHidden bool) ([]domain.Category, error)
	CreateCategory(ctx context.Context, orgID string, req *domain.CreateCategoryRequest) (*domain.Category, error)
	SetPreference(ctx context.Context, orgID, userID, categoryID string, req *domain.UpdateCategoryPreferenceRequest) (*domain.CategoryPreference, error)

	ListActivities(ctx context.Context, orgID string, filter domain.ActivityFilter) ([]domain.Activity, error)
	CreateActivity(ctx context.Context, orgID string, req *domain.CreateActivityRequest) (*domain.Activity, error)
	DeleteActivity(ctx context.Context, orgID, id string) error
}

// RatingService defines rating capture
type RatingService interface {
	Record(ctx context.Context, orgID, raterID string, req *domain.CreateRatingRequest) (*domain.Rating, error)
	ListByMember(ctx context.Context, orgID, memberID string, period *domain.Period) ([]domain.RatingDetail, error)
}

// FeedbackService defines free-text feedback
type FeedbackService interface {
	Create(ctx context.Context, orgID, authorID, memberID string, req *domain.CreateFeedbackRequest) (*domain.Feedback, error)
	ListByMember(ctx context.Context, orgID, memberID string) ([]domain.Feedback, error)
}

// DashboardService composes dashboards
type DashboardService interface {
	Organization(ctx context.Context, orgID string, prev performance.Previous) (*performance.Dashboard, error)
	Team(ctx context.Context, orgID, teamID string, prev performance.Previous) (*performance.Dashboard, error)
}

// ReviewService defines review generation and the review lifecycle
type ReviewService interface {
	// Generate returns *domain.InsufficientDataError when the member lacks data
	Generate(ctx context.Context, orgID string, author *domain.User, memberID string, req *domain.GenerateReviewRequest) (*domain.Review, error)
	ListByMember(ctx context.Context, orgID, memberID string) ([]domain.Review, error)
	Get(ctx context.Context, orgID, id string) (*domain.Review, error)
	Publish(ctx context.Context, orgID, id string) (*domain.Review, error)
	Acknowledge(ctx context.Context, orgID, id string) (*domain.Review, error)
	Delete(ctx context.Context, orgID, id string) error
}

// WebhookService handles identity provider events
type WebhookService interface {
	Handle(ctx context.Context, headers http.Header, body []byte, ipAddress string) (*WebhookResult, error)
}

// MemberPerformance is a member's overall score with its per-category breakdown
type MemberPerformance struct {
	Member        *domain.Member              `json:"member"`
	Score         performance.MemberScore     `json:"score"`
	Categories    []performance.CategoryScore `json:"categories"`
	RecentRatings []domain.RatingDetail       `json:"recent_ratings"`
}

// WebhookResult reports what a webhook delivery did
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Outcome   string `json:"outcome"`
}

// Services aggregates all service interfaces
type Services struct {
	Auth         AuthService
	Organization OrganizationService
	Team         TeamService
	Member       MemberService
	Catalog      CatalogService
	Rating       RatingService
	Feedback     FeedbackService
	Dashboard    DashboardService
	Review       ReviewService
	Webhook      WebhookService
}
