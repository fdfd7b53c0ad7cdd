package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReviewStatus is the lifecycle state of a review
type ReviewStatus string

const (
	ReviewDraft        ReviewStatus = "DRAFT"
	ReviewPublished    ReviewStatus = "PUBLISHED"
	ReviewAcknowledged ReviewStatus = "ACKNOWLEDGED"
)

// next holds the only permitted forward move for each status
var next = map[ReviewStatus]ReviewStatus{
	ReviewDraft:     ReviewPublished,
	ReviewPublished: ReviewAcknowledged,
}

// CanTransitionTo reports whether s may move to target
func (s ReviewStatus) CanTransitionTo(target ReviewStatus) bool {
	n, ok := next[s]
	return ok && n == target
}

// Deletable reports whether a review in this status may be removed
func (s ReviewStatus) Deletable() bool {
	return s == ReviewDraft
}

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewDraft, ReviewPublished, ReviewAcknowledged:
		return true
	}
	return false
}

// Review is a versioned, generated performance review for one member and period
type Review struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	MemberID       string         `json:"member_id"`
	PeriodStart    time.Time      `json:"period_start"`
	PeriodEnd      time.Time      `json:"period_end"`
	Version        int            `json:"version"`
	Status         ReviewStatus   `json:"status"`
	Document       ReviewDocument `json:"document"`
	CreatedBy      *string        `json:"created_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
	DeletedAt      *time.Time     `json:"deleted_at,omitempty"`
}

// ReviewDocument is the structured body produced by a review generator
type ReviewDocument struct {
	OverallScore        float64              `json:"overall_score"`
	OverallBand         string               `json:"overall_band"`
	Summary             string               `json:"summary"`
	CategoryAssessments []CategoryAssessment `json:"category_assessments"`
	Strengths           []string             `json:"strengths"`
	DevelopmentAreas    []string             `json:"development_areas"`
	RatingsConsidered   int                  `json:"ratings_considered"`
	FeedbackConsidered  int                  `json:"feedback_considered"`
	GeneratedBy         string               `json:"generated_by"`
}

// CategoryAssessment is the per-category section of a review
type CategoryAssessment struct {
	CategoryID    string  `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
	Band          string  `json:"band"`
	Assessment    string  `json:"assessment"`
}

type GenerateReviewRequest struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required,gtfield=PeriodStart"`
}

// MissingData describes why review generation was refused
type MissingData struct {
	RatingsRequired    int      `json:"ratings_required"`
	RatingsFound       int      `json:"ratings_found"`
	CategoriesRequired int      `json:"categories_required"`
	CategoriesFound    int      `json:"categories_found"`
	Missing            []string `json:"missing"`
}

// InsufficientDataError is a non-fatal refusal to generate a review
type InsufficientDataError struct {
	MissingData
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for review: %s", strings.Join(e.Missing, "; "))
}

// CheckReviewInput compares what was found with the thresholds and returns
// an InsufficientDataError listing every shortfall, or nil.
func CheckReviewInput(ratingsFound, categoriesFound, minRatings, minCategories int) *InsufficientDataError {
	md := MissingData{
		RatingsRequired:    minRatings,
		RatingsFound:       ratingsFound,
		CategoriesRequired: minCategories,
		CategoriesFound:    categoriesFound,
		Missing:            []string{},
	}
	if ratingsFound < minRatings {
		md.Missing = append(md.Missing, fmt.Sprintf("%d more rating(s)", minRatings-ratingsFound))
	}
	if categoriesFound < minCategories {
		md.Missing = append(md.Missing, fmt.Sprintf("ratings in %d more categor(ies)", minCategories-categoriesFound))
	}
	if len(md.Missing) == 0 {
		return nil
	}
	return &InsufficientDataError{MissingData: md}
}
