package domain

import "time"

// Rating bounds
const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// Rating is an immutable score for one member on one activity
type Rating struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"member_id"`
	ActivityID string    `json:"activity_id"`
	RaterID    *string   `json:"rater_id,omitempty"`
	Value      int       `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingDetail is a rating joined with its activity and category
type RatingDetail struct {
	Rating
	ActivityName string `json:"activity_name"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type CreateRatingRequest struct {
	MemberID   string `json:"member_id" validate:"required,uuid"`
	ActivityID string `json:"activity_id" validate:"required,uuid"`
	Value      int    `json:"value" validate:"min=1,max=5"`
}

// Feedback is a free-text comment about a member, used as review input
type Feedback struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	AuthorID  *string   `json:"author_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFeedbackRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// Period is a half-open time window [Start, End)
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MaxPeriod caps review windows
const MaxPeriod = 366 * 24 * time.Hour

// Valid reports whether the window is non-empty and not longer than MaxPeriod
func (p Period) Valid() bool {
	return p.Start.Before(p.End) && p.End.Sub(p.Start) <= MaxPeriod
}

// Contains reports whether t lies within the window
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
