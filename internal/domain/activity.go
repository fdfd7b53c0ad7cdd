package domain

import "time"

// Category groups activities. A nil OrganizationID marks a built-in category shared by all tenants.
type Category struct {
	ID             string     `json:"id"`
	OrganizationID *string    `json:"organization_id,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	IsFavorite     bool       `json:"is_favorite"`
	IsHidden       bool       `json:"is_hidden"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// Activity is a rateable unit of work
type Activity struct {
	ID             string     `json:"id"`
	CategoryID     string     `json:"category_id"`
	CategoryName   string     `json:"category_name"`
	OrganizationID *string    `json:"organization_id,omitempty"`
	TeamID         *string    `json:"team_id,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// ActivityFilter narrows activity listings
type ActivityFilter struct {
	CategoryID string
	TeamID     string
}

// CategoryPreference is a user's favorite/hidden flag pair for one category
type CategoryPreference struct {
	UserID     string `json:"user_id"`
	CategoryID string `json:"category_id"`
	Favorite   bool   `json:"favorite"`
	Hidden     bool   `json:"hidden"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=80"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryPreferenceRequest toggles favorite and hidden independently
type UpdateCategoryPreferenceRequest struct {
	Favorite *bool `json:"favorite"`
	Hidden   *bool `json:"hidden"`
}

type CreateActivityRequest struct {
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	TeamID      *string `json:"team_id" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Description string  `json:"description" validate:"max=1000"`
}
