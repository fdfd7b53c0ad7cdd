package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"authentication", NewAuthenticationError("no"), ErrorTypeAuthentication, http.StatusUnauthorized},
		{"authorization", NewAuthorizationError("no"), ErrorTypeAuthorization, http.StatusForbidden},
		{"not found", NewNotFoundError("gone"), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("dup", nil), ErrorTypeConflict, http.StatusConflict},
		{"insufficient data", NewInsufficientDataError("few", nil), ErrorTypeInsufficientData, http.StatusUnprocessableEntity},
		{"internal", NewInternalError("boom", nil), ErrorTypeInternal, http.StatusInternalServerError},
		{"external", NewExternalError("upstream", nil), ErrorTypeExternal, http.StatusBadGateway},
		{"rate limit", NewRateLimitError("slow down"), ErrorTypeRateLimit, http.StatusTooManyRequests},
		{"timeout", NewTimeoutError("too slow", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewInternalError("Failed to load team", cause)

	assert.Equal(t, "internal: Failed to load team (connection reset)", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "not_found: missing", NewNotFoundError("missing").Error())
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewConflictError("Team name already exists", nil))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeConflict, appErr.Type)
	assert.True(t, IsType(wrapped, ErrorTypeConflict))
	assert.False(t, IsType(wrapped, ErrorTypeNotFound))

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestWithDetails(t *testing.T) {
	err := NewValidationError("Invalid request", nil).WithDetails(map[string]interface{}{"value": "max"})
	assert.Equal(t, "max", err.Details["value"])
}
