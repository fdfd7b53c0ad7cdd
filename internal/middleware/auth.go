package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"teamperf/internal/domain"
	"teamperf/internal/service"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// UserContextKey is the key for the authenticated *domain.User in context
	UserContextKey ContextKey = "user"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Auth resolves the bearer session token to a live local user
func Auth(authService service.AuthService, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, r, errors.NewAuthenticationError("Authorization header is required"), log)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid authorization header format"), log)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token == "" {
				writeErrorResponse(w, r, errors.NewAuthenticationError("Token is required"), log)
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				appErr, ok := errors.As(err)
				if !ok {
					appErr = errors.NewInternalError("Internal server error", err)
				}
				writeErrorResponse(w, r, appErr, log)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			log.WithField("user_id", user.ID).Debug("User authenticated")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOrganization rejects users who have not created or joined an organization yet
func RequireOrganization(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUser(r.Context()).OrgID() == "" {
				appErr := errors.NewAuthorizationError("Create an organization first")
				appErr.Internal = domain.ErrNoOrganization
				writeErrorResponse(w, r, appErr, log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUser returns the authenticated user or nil
func GetUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserContextKey).(*domain.User)
	return user
}

// WithUser stores user in ctx the way Auth does
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// writeErrorResponse writes the failure envelope for errors raised before a handler runs
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, log *logger.Logger) {
	entry := log.WithError(appErr).WithField("request_id", GetRequestID(r.Context()))
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request rejected")
	} else {
		entry.Debug("Request rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   appErr.Message,
	})
}
