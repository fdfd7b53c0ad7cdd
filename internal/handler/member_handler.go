package handler

import (
	"net/http"
	"time"

	"teamperf/internal/domain"
	"teamperf/internal/service"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// MemberHandler handles member resources and everything recorded against a member
type MemberHandler struct {
	members  service.MemberService
	ratings  service.RatingService
	feedback service.FeedbackService
	logger   *logger.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(members service.MemberService, ratings service.RatingService, feedback service.FeedbackService, log *logger.Logger) *MemberHandler {
	return &MemberHandler{members: members, ratings: ratings, feedback: feedback, logger: log}
}

// Get handles GET /api/members/{memberId}
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	member, err := h.members.Get(r.Context(), orgID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

// Update handles PUT /api/members/{memberId}
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req domain.UpdateMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	member, err := h.members.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

// Delete handles DELETE /api/members/{memberId}
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.members.Delete(r.Context(), orgID, id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// Performance handles GET /api/members/{memberId}/performance
func (h *MemberHandler) Performance(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	perf, err := h.members.Performance(r.Context(), orgID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, perf)
}

// ListRatings handles GET /api/members/{memberId}/ratings?from=&to=
func (h *MemberHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	period, err := parsePeriod(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	ratings, err := h.ratings.ListByMember(r.Context(), orgID, id, period)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ratings)
}

// CreateFeedback handles POST /api/members/{memberId}/feedback
func (h *MemberHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	user, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req domain.CreateFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	item, err := h.feedback.Create(r.Context(), orgID, user.ID, id, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// ListFeedback handles GET /api/members/{memberId}/feedback
func (h *MemberHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	items, err := h.feedback.ListByMember(r.Context(), orgID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// parsePeriod reads an optional from/to window; both or neither must be given
func parsePeriod(r *http.Request) (*domain.Period, error) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, errors.NewValidationError("Provide both from and to", map[string]interface{}{"from": "required_with=to"})
	}
	start, err := parseTime(from)
	if err != nil {
		return nil, errors.NewValidationError("Invalid from", map[string]interface{}{"from": "datetime"})
	}
	end, err := parseTime(to)
	if err != nil {
		return nil, errors.NewValidationError("Invalid to", map[string]interface{}{"to": "datetime"})
	}
	return &domain.Period{Start: start, End: end}, nil
}

// parseTime accepts RFC 3339 timestamps or bare dates (midnight UTC)
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
