package handler

import (
	"context"
	"crypto/md5"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"teamperf/internal/domain"
	"teamperf/internal/middleware"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
	"teamperf/pkg/validation"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Envelope wraps every response body
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// respondError is the single place errors become HTTP responses
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := classify(err)

	entry := log.WithError(err).WithFields(map[string]interface{}{
		"request_id": middleware.GetRequestID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     appErr.StatusCode,
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request refused")
	}

	body := Envelope{Success: false, Error: appErr.Message}
	if len(appErr.Details) > 0 {
		body.Data = appErr.Details
	}
	var insufficient *domain.InsufficientDataError
	if stderrors.As(err, &insufficient) {
		body.Data = insufficient.MissingData
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// classify maps any error onto the application taxonomy
func classify(err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}

	var insufficient *domain.InsufficientDataError
	switch {
	case stderrors.As(err, &insufficient):
		return errors.NewInsufficientDataError("Not enough data to generate a review", nil)
	case stderrors.Is(err, domain.ErrNotFound):
		return errors.NewNotFoundError("Resource not found")
	case stderrors.Is(err, domain.ErrDuplicate), stderrors.Is(err, domain.ErrAlreadyInOrg):
		return errors.NewConflictError("Resource already exists", err)
	case stderrors.Is(err, domain.ErrInvalidTransition), stderrors.Is(err, domain.ErrReviewNotDraft):
		return errors.NewValidationError(err.Error(), nil)
	case stderrors.Is(err, domain.ErrNoOrganization):
		return errors.NewAuthorizationError("Create an organization first")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("Request timed out", err)
	}
	return errors.NewInternalError("Internal server error", err)
}

// decodeJSON reads a bounded body into dst, rejecting unknown fields, then validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.As(err, &maxErr):
			return errors.NewValidationError("Request body too large", nil)
		case stderrors.Is(err, io.EOF):
			return errors.NewValidationError("Request body is required", nil)
		}
		return errors.NewValidationError("Invalid request body", map[string]interface{}{"body": err.Error()})
	}
	if dec.More() {
		return errors.NewValidationError("Invalid request body", map[string]interface{}{"body": "trailing data"})
	}
	return validation.Struct(dst)
}

// idParam returns a path parameter that must be a UUID
func idParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", errors.NewValidationError("Invalid "+name, map[string]interface{}{name: "uuid"})
	}
	return id.String(), nil
}

// scope returns the caller and their organization id; routes are mounted behind RequireOrganization
func scope(r *http.Request) (*domain.User, string) {
	user := middleware.GetUser(r.Context())
	return user, user.OrgID()
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}

// respondCached writes data with an ETag and answers 304 when the client already has it
func respondCached(w http.ResponseWriter, r *http.Request, data interface{}, maxAge int) {
	etag := generateETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", maxAge))
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// clientIP prefers the address chi's RealIP middleware already resolved
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if ip == "::1" {
		return "127.0.0.1"
	}
	return ip
}
