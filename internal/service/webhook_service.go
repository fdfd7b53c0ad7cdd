package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"teamperf/internal/domain"
	"teamperf/internal/repository"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
	"teamperf/pkg/metrics"
	"teamperf/pkg/redis"
	"teamperf/pkg/validation"
)

// Identity event types
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Webhook outcomes
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeNotFound  = "not_found"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	// OutcomeSkippedDeleted means an update arrived for a soft-deleted user
	OutcomeSkippedDeleted = "skipped_deleted"
)

type identityEvent struct {
	Type string       `json:"type" validate:"required"`
	Data identityUser `json:"data"`
}

type identityEmail struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type identityUser struct {
	ID                    string          `json:"id" validate:"required"`
	EmailAddresses        []identityEmail `json:"email_addresses"`
	PrimaryEmailAddressID string          `json:"primary_email_address_id"`
	FirstName             string          `json:"first_name"`
	LastName              string          `json:"last_name"`
	ImageURL              string          `json:"image_url"`
	Deleted               bool            `json:"deleted"`
}

// primaryEmail falls back to the first address when no primary is marked
func (u identityUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

type webhookService struct {
	verifier *WebhookVerifier
	users    repository.UserRepository
	redis    *redis.Client
	metrics  *metrics.Manager
	logger   *logger.Logger
}

// NewWebhookService creates a new webhook service. A nil redis client disables redelivery
// detection; a nil verifier rejects every delivery.
func NewWebhookService(verifier *WebhookVerifier, users repository.UserRepository, redisClient *redis.Client, m *metrics.Manager, log *logger.Logger) WebhookService {
	return &webhookService{
		verifier: verifier,
		users:    users,
		redis:    redisClient,
		metrics:  m,
		logger:   log,
	}
}

func (s *webhookService) Handle(ctx context.Context, headers http.Header, body []byte, ipAddress string) (*WebhookResult, error) {
	if s.verifier == nil {
		s.metrics.WebhookEvent("unverified", OutcomeRejected)
		return nil, apperrors.NewAuthenticationError("Webhook verification is not configured")
	}
	if err := s.verifier.Verify(headers, body); err != nil {
		s.metrics.WebhookEvent("unverified", OutcomeRejected)
		s.logger.WithError(err).WithField("ip", ipAddress).Warn("Rejected identity webhook")
		return nil, err
	}

	var evt identityEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, apperrors.NewValidationError("Invalid webhook payload", nil)
	}
	if err := validation.Struct(&evt); err != nil {
		return nil, err
	}

	result := &WebhookResult{EventID: headers.Get(HeaderWebhookID), EventType: evt.Type}
	switch evt.Type {
	case EventUserCreated, EventUserUpdated, EventUserDeleted:
	default:
		result.Outcome = OutcomeIgnored
		s.metrics.WebhookEvent(evt.Type, result.Outcome)
		return result, nil
	}

	fresh, release := s.claim(ctx, result.EventID)
	if !fresh {
		result.Outcome = OutcomeDuplicate
		s.metrics.WebhookEvent(evt.Type, result.Outcome)
		s.logger.Info("Duplicate identity webhook delivery", zap.String("event_id", result.EventID))
		return result, nil
	}

	outcome, err := s.apply(ctx, result.EventID, evt, ipAddress)
	if err != nil {
		release()
		s.metrics.WebhookEvent(evt.Type, OutcomeFailed)
		return nil, fmt.Errorf("apply %s: %w", evt.Type, err)
	}

	result.Outcome = outcome
	s.metrics.WebhookEvent(evt.Type, outcome)
	s.logger.Info("Identity webhook processed",
		zap.String("event_id", result.EventID),
		zap.String("event_type", evt.Type),
		zap.String("external_id", evt.Data.ID),
		zap.String("outcome", outcome))
	return result, nil
}

// claim marks the event id as seen. release forgets it again so a failed delivery can be retried.
func (s *webhookService) claim(ctx context.Context, eventID string) (fresh bool, release func()) {
	release = func() {}
	if s.redis == nil {
		return true, release
	}
	key := s.redis.KeyBuilder.KeyWebhookEvent(eventID)
	ok, err := s.redis.SetNX(ctx, key, "1", redis.TTLWebhookEvent)
	if err != nil {
		s.logger.WithError(err).Warn("Webhook dedupe unavailable, processing delivery")
		return true, release
	}
	return ok, func() {
		if err := s.redis.Delete(context.WithoutCancel(ctx), key); err != nil {
			s.logger.WithError(err).Warn("Failed to release webhook event claim")
		}
	}
}

func (s *webhookService) apply(ctx context.Context, eventID string, evt identityEvent, ipAddress string) (string, error) {
	audit := &domain.AuditLog{
		ExternalID: evt.Data.ID,
		Action:     evt.Type,
		Details:    map[string]interface{}{"event_id": eventID},
		IPAddress:  ipAddress,
	}

	if evt.Type == EventUserDeleted {
		deleted, err := s.users.SoftDeleteByExternalID(ctx, evt.Data.ID, audit)
		if err != nil {
			return "", err
		}
		if deleted == nil {
			return OutcomeNotFound, nil
		}
		return OutcomeApplied, nil
	}

	user := &domain.User{
		ExternalID: evt.Data.ID,
		Email:      evt.Data.primaryEmail(),
		FirstName:  evt.Data.FirstName,
		LastName:   evt.Data.LastName,
		ImageURL:   evt.Data.ImageURL,
	}
	audit.Details["email"] = user.Email
	if _, err := s.users.Upsert(ctx, user, audit); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return OutcomeSkippedDeleted, nil
		}
		return "", err
	}
	return OutcomeApplied, nil
}
