package domain

import "time"

// User roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// User is the local mirror of an identity provider account
type User struct {
	ID             string     `json:"id"`
	ExternalID     string     `json:"external_id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	ImageURL       string     `json:"image_url,omitempty"`
	OrganizationID *string    `json:"organization_id,omitempty"`
	Role           string     `json:"role"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// DisplayName joins first and last name, falling back to email
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// OrgID returns the organization id or "" when the user has not set one up yet
func (u *User) OrgID() string {
	if u == nil || u.OrganizationID == nil {
		return ""
	}
	return *u.OrganizationID
}

// AuditLog records one identity lifecycle change
type AuditLog struct {
	ID         string                 `json:"id"`
	UserID     *string                `json:"user_id,omitempty"`
	ExternalID string                 `json:"external_id"`
	Action     string                 `json:"action"`
	Details    map[string]interface{} `json:"details,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SessionClaims are the claims read from a validated session token
type SessionClaims struct {
	Subject   string
	Email     string
	SessionID string
	ExpiresAt time.Time
}
