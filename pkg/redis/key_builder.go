package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "staging":
		prefix = "staging"
	case "local", "test":
		prefix = "local"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyDashboardGeneration holds the organization's dashboard generation counter
func (kb *KeyBuilder) KeyDashboardGeneration(orgID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyDashboardGeneration, orgID))
}

func (kb *KeyBuilder) KeyDashboard(orgID string, gen int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyDashboard, orgID, gen))
}

func (kb *KeyBuilder) KeyTeamDashboard(orgID string, gen int64, teamID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyTeamDashboard, orgID, gen, teamID))
}

// KeyTeamDashboards matches every team dashboard of one generation
func (kb *KeyBuilder) KeyTeamDashboards(orgID string, gen int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyTeamDashboards, orgID, gen))
}

func (kb *KeyBuilder) KeyReviewRateLimit(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyReviewRateLimit, userID))
}

func (kb *KeyBuilder) KeyWebhookEvent(eventID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyWebhookEvent, eventID))
}
