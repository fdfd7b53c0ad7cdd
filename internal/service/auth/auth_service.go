package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"teamperf/internal/domain"
	"teamperf/internal/repository"
	"teamperf/internal/service"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// clockSkew tolerates small clock differences with the identity provider
const clockSkew = 30 * time.Second

// sessionClaims is the payload of an identity provider session token
type sessionClaims struct {
	Email     string `json:"email,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Service implements the AuthService interface
type Service struct {
	secret []byte
	issuer string
	users  repository.UserRepository
	logger *logger.Logger
}

// NewService creates a new auth service. An empty issuer accepts any issuer.
func NewService(secret, issuer string, users repository.UserRepository, log *logger.Logger) service.AuthService {
	return &Service{
		secret: []byte(secret),
		issuer: issuer,
		users:  users,
		logger: log,
	}
}

// ValidateToken checks the HS256 signature, expiry and issuer of a session token
func (s *Service) ValidateToken(tokenString string) (*domain.SessionClaims, error) {
	if len(s.secret) == 0 {
		s.logger.Error("AUTH_JWT_SECRET not configured")
		return nil, apperrors.NewAuthenticationError("Session validation not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewAuthenticationError("Session has expired")
		}
		s.logger.WithError(err).Debug("Failed to parse/validate session token")
		return nil, apperrors.NewAuthenticationError("Invalid session token")
	}
	if !token.Valid || claims.Subject == "" {
		return nil, apperrors.NewAuthenticationError("Invalid session token")
	}

	out := &domain.SessionClaims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Authenticate resolves a session token to a live local user
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByExternalID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user == nil {
		// Never synced, or soft-deleted by the identity webhook
		s.logger.WithField("external_id", claims.Subject).Warn("Session for unknown or deleted user")
		return nil, apperrors.NewAuthenticationError("User not found or deactivated")
	}
	return user, nil
}
