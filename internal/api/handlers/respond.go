package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/gate"
	"github.com/go-chi/chi/v5"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// writeFailure maps a controller error onto a status code.
func writeFailure(w http.ResponseWriter, err error) {
	var gateErr *gate.Error
	switch {
	case errors.As(err, &gateErr):
		status := http.StatusUnauthorized
		if gateErr.Code == gate.CodeLockout || gateErr.Code == gate.CodeLockoutPermanent {
			status = http.StatusLocked
		}
		writeError(w, status, string(gateErr.Code), gateErr.Message)
	case errors.Is(err, domain.ErrHeroNotFound):
		writeError(w, http.StatusNotFound, "HERO_NOT_FOUND", "Superhero not found")
	case errors.Is(err, domain.ErrTeamNotFound):
		writeError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "Team not found")
	case errors.Is(err, domain.ErrReferenceNotFound):
		writeError(w, http.StatusNotFound, "REFERENCE_NOT_FOUND", "Team or superhero does not exist")
	case errors.Is(err, domain.ErrInvalidTeamName):
		writeError(w, http.StatusBadRequest, "INVALID_TEAM_NAME", "Team name is required")
	case errors.Is(err, domain.ErrStoreNotInitialized), errors.Is(err, domain.ErrStoreClosed):
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Local store is not ready")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}

func heroIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "heroId"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
