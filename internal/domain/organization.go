package domain

import "time"

// Organization is the tenant boundary; every team, member and review belongs to exactly one
type Organization struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// CreateOrganizationRequest bootstraps a tenant together with its first team
type CreateOrganizationRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Slug     string `json:"slug" validate:"omitempty,min=2,max=60,lowercase"`
	TeamName string `json:"team_name" validate:"omitempty,max=120"`
}

// OrganizationBootstrap is the result of creating a tenant
type OrganizationBootstrap struct {
	Organization *Organization `json:"organization"`
	Team         *Team         `json:"team"`
	Owner        *User         `json:"owner"`
}
