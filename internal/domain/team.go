package domain

import "time"

// Team groups members inside an organization
type Team struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	MemberCount    int        `json:"member_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// CreateTeamRequest creates a team and, optionally, its first members in one transaction
type CreateTeamRequest struct {
	Name        string                `json:"name" validate:"required,min=1,max=120"`
	Description string                `json:"description" validate:"max=1000"`
	Members     []CreateMemberRequest `json:"members" validate:"max=200,dive"`
}

// UpdateTeamRequest changes team attributes; nil fields are left alone
type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}
