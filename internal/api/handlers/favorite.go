package handlers

import (
	"context"
	"net/http"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/state"
)

type FavoriteHandler struct {
	ctrl *state.Controller
}

func NewFavoriteHandler(ctrl *state.Controller) *FavoriteHandler {
	return &FavoriteHandler{ctrl: ctrl}
}

type FavoritesResponse struct {
	Favorites []domain.Hero `json:"favorites"`
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: h.ctrl.State().Favorites})
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.ctrl.AddToFavorites)
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.ctrl.RemoveFromFavorites)
}

func (h *FavoriteHandler) update(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, heroID int) error) {
	id, ok := heroIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_HERO_ID", "Invalid superhero id")
		return
	}
	if err := apply(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: h.ctrl.State().Favorites})
}
