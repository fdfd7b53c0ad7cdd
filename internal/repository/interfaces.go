package repository

import (
	"context"

	"teamperf/internal/domain"
)

// Get* methods return (nil, nil) when nothing live matches.

// OrganizationRepository defines tenant operations
type OrganizationRepository interface {
	// Bootstrap creates the organization and its first team and makes owner its owner, atomically
	Bootstrap(ctx context.Context, owner *domain.User, params BootstrapParams) (*domain.OrganizationBootstrap, error)

	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

// BootstrapParams are the already validated inputs of Bootstrap
type BootstrapParams struct {
	Name     string
	Slug     string
	TeamName string
}

// UserRepository defines identity mirror operations
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByExternalID looks up by identity key and never returns soft-deleted users
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// Upsert inserts or updates by external id and writes audit in the same transaction
	Upsert(ctx context.Context, user *domain.User, audit *domain.AuditLog) (created bool, err error)

	// SoftDeleteByExternalID stamps deleted_at and writes audit in the same transaction.
	// Returns nil when no live user matched.
	SoftDeleteByExternalID(ctx context.Context, externalID string, audit *domain.AuditLog) (*domain.User, error)

	ListAuditLogs(ctx context.Context, externalID string, limit int) ([]domain.AuditLog, error)
}

// TeamRepository defines team operations scoped to an organization
type TeamRepository interface {
	List(ctx context.Context, orgID string) ([]domain.Team, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Team, error)

	// CreateWithMembers inserts the team and members in one transaction
	CreateWithMembers(ctx context.Context, team *domain.Team, members []domain.Member) error

	Update(ctx context.Context, team *domain.Team) error

	// SoftDelete removes the team and its members
	SoftDelete(ctx context.Context, orgID, id string) (bool, error)
}

// MemberRepository defines member operations scoped to an organization
type MemberRepository interface {
	ListByTeam(ctx context.Context, orgID, teamID string) ([]domain.Member, error)
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Member, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Member, error)
	Create(ctx context.Context, member *domain.Member) error
	Update(ctx context.Context, member *domain.Member) error
	SoftDelete(ctx context.Context, orgID, id string) (bool, error)

	// HardDelete physically removes the member and everything hanging off it
	HardDelete(ctx context.Context, orgID, id string) (bool, error)
}

// CategoryRepository defines category and preference operations
type CategoryRepository interface {
	// List returns built-in and organization categories with the user's preference flags
	List(ctx context.Context, orgID, userID string, includeHidden bool) ([]domain.Category, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	GetPreference(ctx context.Context, userID, categoryID string) (*domain.CategoryPreference, error)
	SavePreference(ctx context.Context, pref *domain.CategoryPreference) error
}

// ActivityRepository defines activity operations
type ActivityRepository interface {
	List(ctx context.Context, orgID string, filter domain.ActivityFilter) ([]domain.Activity, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Activity, error)
	Create(ctx context.Context, activity *domain.Activity) error

	// SoftDelete only removes activities owned by the organization
	SoftDelete(ctx context.Context, orgID, id string) (bool, error)
}

// RatingRepository defines append-only rating operations
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error

	// ListByMember returns detailed ratings, newest first, optionally within period
	ListByMember(ctx context.Context, memberID string, period *domain.Period) ([]domain.RatingDetail, error)

	// ValuesByOrganization maps live member ids to their rating values
	ValuesByOrganization(ctx context.Context, orgID string) (map[string][]int, error)

	// ValuesByTeam maps the team's live member ids to their rating values
	ValuesByTeam(ctx context.Context, orgID, teamID string) (map[string][]int, error)
}

// FeedbackRepository defines feedback operations
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	ListByMember(ctx context.Context, memberID string, period *domain.Period) ([]domain.Feedback, error)
}

// ReviewRepository defines review persistence and status changes
type ReviewRepository interface {
	// CreateVersion stores review as the next version for its member and period
	CreateVersion(ctx context.Context, review *domain.Review) error

	GetByID(ctx context.Context, orgID, id string) (*domain.Review, error)
	ListByMember(ctx context.Context, orgID, memberID string) ([]domain.Review, error)

	// Transition moves a review from one status to another only if it is still in from.
	// Returns nil when no live review in from matched.
	Transition(ctx context.Context, orgID, id string, from, to domain.ReviewStatus) (*domain.Review, error)

	// SoftDeleteDraft removes a review only while it is a draft
	SoftDeleteDraft(ctx context.Context, orgID, id string) (bool, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Organization OrganizationRepository
	User         UserRepository
	Team         TeamRepository
	Member       MemberRepository
	Category     CategoryRepository
	Activity     ActivityRepository
	Rating       RatingRepository
	Feedback     FeedbackRepository
	Review       ReviewRepository
}
