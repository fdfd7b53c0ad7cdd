package handler

import (
	stderrors "errors"
	"io"
	"net/http"

	"teamperf/internal/service"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// maxWebhookBytes bounds identity provider payloads
const maxWebhookBytes = 512 << 10

// WebhookHandler receives identity provider events
type WebhookHandler struct {
	webhooks service.WebhookService
	logger   *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhooks service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks, logger: log}
}

// Identity handles POST /api/webhooks/identity. The raw body is needed for the signature check.
func (h *WebhookHandler) Identity(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			respondError(w, r, h.logger, errors.NewValidationError("Payload too large", nil))
			return
		}
		respondError(w, r, h.logger, errors.NewValidationError("Could not read payload", nil))
		return
	}

	result, err := h.webhooks.Handle(r.Context(), r.Header, body, clientIP(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"event_id":   result.EventID,
		"event_type": result.EventType,
		"outcome":    result.Outcome,
	}).Info("Identity webhook processed")
	respondJSON(w, http.StatusOK, result)
}
