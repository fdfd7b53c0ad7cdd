package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	AllowedOrigins  []string
	DatabaseURL     string
	DatabaseReadURL string // Read replica URL for dashboard queries
	RedisURL        string

	AuthJWTSecret string
	AuthJWTIssuer string
	WebhookSecret string

	DBTxTimeout       time.Duration
	DashboardCacheTTL time.Duration

	ReviewMinRatings    int
	ReviewMinCategories int
	ReviewRateLimit     int64 // generations per member per hour, 0 disables
	GeminiAPIKey        string
	ReviewModel         string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:  parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabaseReadURL: getEnv("DATABASE_READ_URL", getEnv("DATABASE_URL", "")), // Falls back to write DB if not set
		RedisURL:        getEnv("REDIS_URL", ""),
		AuthJWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
		AuthJWTIssuer:   getEnv("AUTH_JWT_ISSUER", ""),
		WebhookSecret:   getEnv("WEBHOOK_SECRET", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		ReviewModel:     getEnv("REVIEW_MODEL", ""),
	}

	var err error
	if cfg.DBTxTimeout, err = getDurationEnv("DB_TX_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DashboardCacheTTL, err = getDurationEnv("DASHBOARD_CACHE_TTL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReviewMinRatings, err = getIntEnv("REVIEW_MIN_RATINGS", 5); err != nil {
		return nil, err
	}
	if cfg.ReviewMinCategories, err = getIntEnv("REVIEW_MIN_CATEGORIES", 2); err != nil {
		return nil, err
	}
	limit, err := getIntEnv("REVIEW_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	cfg.ReviewRateLimit = int64(limit)

	return cfg, nil
}

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var problems []string
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.DBTxTimeout <= 0 {
		problems = append(problems, "DB_TX_TIMEOUT must be positive")
	}
	if c.ReviewMinRatings < 1 {
		problems = append(problems, "REVIEW_MIN_RATINGS must be at least 1")
	}
	if c.ReviewMinCategories < 1 {
		problems = append(problems, "REVIEW_MIN_CATEGORIES must be at least 1")
	}
	if c.ReviewRateLimit < 0 {
		problems = append(problems, "REVIEW_RATE_LIMIT must not be negative")
	}
	if c.IsProduction() {
		if c.AuthJWTSecret == "" {
			problems = append(problems, "AUTH_JWT_SECRET is required in production")
		}
		if c.WebhookSecret == "" {
			problems = append(problems, "WEBHOOK_SECRET is required in production")
		}
		if c.RedisURL == "" {
			problems = append(problems, "REDIS_URL is required in production")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

// getDurationEnv accepts Go durations ("15s") or bare seconds ("15")
func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
