package handler

import (
	"net/http"

	"teamperf/internal/domain"
	"teamperf/internal/middleware"
	"teamperf/internal/service"
	"teamperf/pkg/logger"
)

// OrganizationHandler serves the caller's profile and tenant bootstrap
type OrganizationHandler struct {
	organizations service.OrganizationService
	logger        *logger.Logger
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizations service.OrganizationService, log *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations, logger: log}
}

// Me handles GET /api/me
func (h *OrganizationHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.GetUser(r.Context()))
}

// Create handles POST /api/organizations
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrganizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.organizations.Create(r.Context(), middleware.GetUser(r.Context()), &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
