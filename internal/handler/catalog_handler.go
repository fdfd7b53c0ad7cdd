package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"teamperf/internal/domain"
	"teamperf/internal/service"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// CatalogHandler handles categories, category preferences and activities
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: log}
}

// ListCategories handles GET /api/categories?include_hidden=true
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user, orgID := scope(r)
	includeHidden := false
	if raw := r.URL.Query().Get("include_hidden"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, r, h.logger, errors.NewValidationError("Invalid include_hidden", map[string]interface{}{"include_hidden": "boolean"}))
			return
		}
		includeHidden = v
	}

	categories, err := h.catalog.ListCategories(r.Context(), orgID, user.ID, includeHidden)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	var req domain.CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), orgID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// SetPreference handles PUT /api/categories/{categoryId}/preference
func (h *CatalogHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	user, orgID := scope(r)
	id, err := idParam(r, "categoryId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req domain.UpdateCategoryPreferenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	pref, err := h.catalog.SetPreference(r.Context(), orgID, user.ID, id, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, pref)
}

// ListActivities handles GET /api/activities?category_id=&team_id=
func (h *CatalogHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	q := r.URL.Query()
	filter := domain.ActivityFilter{CategoryID: q.Get("category_id"), TeamID: q.Get("team_id")}
	for name, v := range map[string]string{"category_id": filter.CategoryID, "team_id": filter.TeamID} {
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			respondError(w, r, h.logger, errors.NewValidationError("Invalid "+name, map[string]interface{}{name: "uuid"}))
			return
		}
	}

	activities, err := h.catalog.ListActivities(r.Context(), orgID, filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

// CreateActivity handles POST /api/activities
func (h *CatalogHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	var req domain.CreateActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	activity, err := h.catalog.CreateActivity(r.Context(), orgID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, activity)
}

// DeleteActivity handles DELETE /api/activities/{activityId}
func (h *CatalogHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "activityId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.catalog.DeleteActivity(r.Context(), orgID, id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}
