package handler

import (
	"context"
	"net/http"

	"teamperf/internal/domain"
	"teamperf/internal/service"
	"teamperf/pkg/logger"
)

// ReviewHandler handles review generation and the review lifecycle
type ReviewHandler struct {
	reviews service.ReviewService
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: log}
}

// Generate handles POST /api/members/{memberId}/reviews
func (h *ReviewHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, orgID := scope(r)
	memberID, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req domain.GenerateReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	rv, err := h.reviews.Generate(r.Context(), orgID, user, memberID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, rv)
}

// ListByMember handles GET /api/members/{memberId}/reviews
func (h *ReviewHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	memberID, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	reviews, err := h.reviews.ListByMember(r.Context(), orgID, memberID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// Get handles GET /api/reviews/{reviewId}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withReview(w, r, h.reviews.Get)
}

// Publish handles POST /api/reviews/{reviewId}/publish
func (h *ReviewHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.withReview(w, r, h.reviews.Publish)
}

// Acknowledge handles POST /api/reviews/{reviewId}/acknowledge
func (h *ReviewHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.withReview(w, r, h.reviews.Acknowledge)
}

// Delete handles DELETE /api/reviews/{reviewId}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "reviewId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), orgID, id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *ReviewHandler) withReview(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, orgID, id string) (*domain.Review, error)) {
	_, orgID := scope(r)
	id, err := idParam(r, "reviewId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	rv, err := op(r.Context(), orgID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}
