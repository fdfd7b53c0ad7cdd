package handler

import (
	"math"
	"net/http"
	"strconv"

	"teamperf/internal/performance"
	"teamperf/internal/service"
	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// dashboardMaxAge matches the order of the server-side cache TTL
const dashboardMaxAge = 30

// DashboardHandler serves organization and team dashboards
type DashboardHandler struct {
	dashboards service.DashboardService
	logger     *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboards service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, logger: log}
}

// Organization handles GET /api/dashboard
func (h *DashboardHandler) Organization(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	prev, err := parsePrevious(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	d, err := h.dashboards.Organization(r.Context(), orgID, prev)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondCached(w, r, d, dashboardMaxAge)
}

// Team handles GET /api/teams/{teamId}/dashboard
func (h *DashboardHandler) Team(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	teamID, err := idParam(r, "teamId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	prev, err := parsePrevious(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	d, err := h.dashboards.Team(r.Context(), orgID, teamID, prev)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondCached(w, r, d, dashboardMaxAge)
}

// parsePrevious reads the previous_* comparison values the client kept from an earlier view
func parsePrevious(r *http.Request) (performance.Previous, error) {
	q := r.URL.Query()
	var prev performance.Previous
	for name, dst := range map[string]**float64{
		"previous_average_rating": &prev.AverageRating,
		"previous_rated_members":  &prev.RatedMembers,
		"previous_total_ratings":  &prev.TotalRatings,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return performance.Previous{}, errors.NewValidationError("Invalid "+name, map[string]interface{}{name: "number"})
		}
		*dst = &v
	}
	return prev, nil
}
