package handlers

import (
	"net/http"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/state"
	"go.uber.org/zap"
)

type HeroHandler struct {
	ctrl   *state.Controller
	logger *zap.Logger
}

func NewHeroHandler(ctrl *state.Controller, logger *zap.Logger) *HeroHandler {
	return &HeroHandler{ctrl: ctrl, logger: logger.Named("heroes")}
}

type HeroesResponse struct {
	Heroes []domain.Hero `json:"heroes"`
	Count  int           `json:"count"`
}

func (h *HeroHandler) List(w http.ResponseWriter, r *http.Request) {
	heroes, err := h.ctrl.SearchHeroes(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HeroesResponse{Heroes: heroes, Count: len(heroes)})
}

func (h *HeroHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := heroIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_HERO_ID", "Invalid superhero id")
		return
	}

	hero, ok := h.ctrl.FindHero(id)
	if !ok {
		writeFailure(w, domain.ErrHeroNotFound)
		return
	}
	writeJSON(w, http.StatusOK, hero)
}

func (h *HeroHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.RefreshSuperheroes(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	heroes := h.ctrl.State().Heroes
	writeJSON(w, http.StatusOK, HeroesResponse{Heroes: heroes, Count: len(heroes)})
}
