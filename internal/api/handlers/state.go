package handlers

import (
	"net/http"

	"github.com/dom/superhero-teams/internal/state"
)

type StateHandler struct {
	ctrl *state.Controller
}

func NewStateHandler(ctrl *state.Controller) *StateHandler {
	return &StateHandler{ctrl: ctrl}
}

type StateResponse struct {
	Loading   bool   `json:"loading"`
	Error     string `json:"error,omitempty"`
	Heroes    int    `json:"heroes"`
	Favorites int    `json:"favorites"`
	Teams     int    `json:"teams"`
}

func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := h.ctrl.State()
	writeJSON(w, http.StatusOK, StateResponse{
		Loading:   s.Loading,
		Error:     s.Error,
		Heroes:    len(s.Heroes),
		Favorites: len(s.Favorites),
		Teams:     len(s.Teams),
	})
}

// ClearError dismisses the last reported failure.
func (h *StateHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearError()
	w.WriteHeader(http.StatusNoContent)
}
