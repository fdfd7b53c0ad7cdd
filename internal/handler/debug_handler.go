package handler

import (
	"net/http"

	"teamperf/internal/service"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// DebugHandler exposes destructive maintenance endpoints outside production
type DebugHandler struct {
	members     service.MemberService
	environment string
	logger      *logger.Logger
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(members service.MemberService, environment string, log *logger.Logger) *DebugHandler {
	return &DebugHandler{members: members, environment: environment, logger: log}
}

// Enabled reports whether debug endpoints answer in this environment
func (h *DebugHandler) Enabled() bool {
	return h.environment != "production"
}

// HardDeleteMember handles DELETE /api/debug/members/{memberId}
func (h *DebugHandler) HardDeleteMember(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		respondError(w, r, h.logger, errors.NewNotFoundError("Endpoint not found"))
		return
	}

	user, orgID := scope(r)
	id, err := idParam(r, "memberId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.members.HardDelete(r.Context(), orgID, id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"member_id": id,
	}).Warn("Debug hard delete")
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "hard_deleted": true})
}
