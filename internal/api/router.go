package api

import (
	"net/http"

	"github.com/dom/superhero-teams/internal/api/handlers"
	"github.com/dom/superhero-teams/internal/api/middleware"
	"github.com/dom/superhero-teams/internal/metrics"
	"github.com/dom/superhero-teams/internal/state"
	"github.com/dom/superhero-teams/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(ctrl *state.Controller, hub *websocket.Hub, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)
	r.Use(metrics.InstrumentHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	stateHandler := handlers.NewStateHandler(ctrl)
	heroHandler := handlers.NewHeroHandler(ctrl, logger)
	favoriteHandler := handlers.NewFavoriteHandler(ctrl)
	teamHandler := handlers.NewTeamHandler(ctrl)
	wsHandler := handlers.NewWebSocketHandler(hub, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", stateHandler.Get)
		r.Delete("/state/error", stateHandler.ClearError)

		r.Route("/heroes", func(r chi.Router) {
			r.Get("/", heroHandler.List)
			r.Get("/{heroId}", heroHandler.Get)
			r.Post("/refresh", heroHandler.Refresh)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", favoriteHandler.List)
			r.Put("/{heroId}", favoriteHandler.Add)
			r.Delete("/{heroId}", favoriteHandler.Remove)
		})

		// Team mutations go through the device gate
		r.Route("/teams", func(r chi.Router) {
			r.Use(middleware.DeviceCredential)
			r.Get("/", teamHandler.List)
			r.Post("/", teamHandler.Create)
			r.Get("/{teamId}", teamHandler.Get)
			r.Delete("/{teamId}", teamHandler.Delete)
			r.Put("/{teamId}/members/{heroId}", teamHandler.AddMember)
			r.Delete("/{teamId}/members/{heroId}", teamHandler.RemoveMember)
		})

		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
