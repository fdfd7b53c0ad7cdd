package handler

import (
	"net/http"

	"teamperf/internal/domain"
	"teamperf/internal/service"
	"teamperf/pkg/logger"
)

// RatingHandler records ratings
type RatingHandler struct {
	ratings service.RatingService
	logger  *logger.Logger
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratings service.RatingService, log *logger.Logger) *RatingHandler {
	return &RatingHandler{ratings: ratings, logger: log}
}

// Create handles POST /api/ratings
func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, orgID := scope(r)
	var req domain.CreateRatingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	rating, err := h.ratings.Record(r.Context(), orgID, user.ID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, rating)
}
