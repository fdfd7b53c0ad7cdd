package domain

import "time"

// Member is a person whose performance is tracked. Members are not users.
type Member struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	TeamID         string     `json:"team_id"`
	Name           string     `json:"name"`
	Title          *string    `json:"title,omitempty"`
	Email          *string    `json:"email,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

type CreateMemberRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=120"`
	Title *string `json:"title" validate:"omitempty,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type UpdateMemberRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=120"`
	Title  *string `json:"title" validate:"omitempty,max=120"`
	Email  *string `json:"email" validate:"omitempty,email"`
	TeamID *string `json:"team_id" validate:"omitempty,uuid"`
}
