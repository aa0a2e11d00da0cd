package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/state"
	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	ctrl *state.Controller
}

func NewTeamHandler(ctrl *state.Controller) *TeamHandler {
	return &TeamHandler{ctrl: ctrl}
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type TeamsResponse struct {
	Teams []domain.Team `json:"teams"`
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TeamsResponse{Teams: h.ctrl.State().Teams})
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	id, err := h.ctrl.CreateTeam(r.Context(), req.Name)
	if err != nil {
		writeFailure(w, err)
		return
	}
	h.writeTeam(w, http.StatusCreated, id)
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeTeam(w, http.StatusOK, chi.URLParam(r, "teamId"))
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.DeleteTeam(r.Context(), chi.URLParam(r, "teamId")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamId")
	heroID, ok := heroIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_HERO_ID", "Invalid superhero id")
		return
	}
	if err := h.ctrl.AddMemberToTeam(r.Context(), teamID, heroID); err != nil {
		writeFailure(w, err)
		return
	}
	h.writeTeam(w, http.StatusOK, teamID)
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamId")
	heroID, ok := heroIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_HERO_ID", "Invalid superhero id")
		return
	}
	if err := h.ctrl.RemoveMemberFromTeam(r.Context(), teamID, heroID); err != nil {
		writeFailure(w, err)
		return
	}
	h.writeTeam(w, http.StatusOK, teamID)
}

func (h *TeamHandler) writeTeam(w http.ResponseWriter, status int, teamID string) {
	team, ok := h.ctrl.FindTeam(teamID)
	if !ok {
		writeFailure(w, domain.ErrTeamNotFound)
		return
	}
	writeJSON(w, status, team)
}
