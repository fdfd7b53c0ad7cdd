package handler

import (
	"net/http"

	"teamperf/internal/domain"
	"teamperf/internal/service"
	"teamperf/pkg/logger"
)

// TeamHandler handles team and member management
type TeamHandler struct {
	teams   service.TeamService
	members service.MemberService
	logger  *logger.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams service.TeamService, members service.MemberService, log *logger.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, members: members, logger: log}
}

// TeamWithMembers is the response of team creation
type TeamWithMembers struct {
	Team    *domain.Team    `json:"team"`
	Members []domain.Member `json:"members"`
}

// List handles GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	teams, err := h.teams.List(r.Context(), orgID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, teams)
}

// Create handles POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	var req domain.CreateTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	team, members, err := h.teams.Create(r.Context(), orgID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, TeamWithMembers{Team: team, Members: members})
}

// Get handles GET /api/teams/{teamId}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "teamId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	team, err := h.teams.Get(r.Context(), orgID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// Update handles PUT /api/teams/{teamId}
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "teamId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req domain.UpdateTeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	team, err := h.teams.Update(r.Context(), orgID, id, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// Delete handles DELETE /api/teams/{teamId}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	id, err := idParam(r, "teamId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.teams.Delete(r.Context(), orgID, id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// ListMembers handles GET /api/teams/{teamId}/members
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	teamID, err := idParam(r, "teamId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	members, err := h.members.ListByTeam(r.Context(), orgID, teamID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// CreateMember handles POST /api/teams/{teamId}/members
func (h *TeamHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	_, orgID := scope(r)
	teamID, err := idParam(r, "teamId")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req domain.CreateMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	member, err := h.members.Create(r.Context(), orgID, teamID, &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}
