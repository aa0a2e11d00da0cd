package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/superhero-teams/internal/api"
	"github.com/dom/superhero-teams/internal/config"
	"github.com/dom/superhero-teams/internal/logging"
	"github.com/dom/superhero-teams/internal/repository/postgres"
	"github.com/dom/superhero-teams/internal/scheduler"
	"github.com/dom/superhero-teams/internal/service"
	"github.com/dom/superhero-teams/internal/state"
	"github.com/dom/superhero-teams/internal/websocket"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, gormLogLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	store := postgres.NewStore(db, logger)
	defer store.Close()

	services, err := service.NewServices(store, cfg, logger)
	if err != nil {
		return err
	}

	ctrl := state.NewController(store, services.Sync, services.Gate, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(ctrl.State, logger)
	ctrl.Subscribe(hub.Publish)
	go hub.Run()
	defer hub.Stop()

	// A failed first load is reported through the state error and can be
	// retried with POST /heroes/refresh, so the server still comes up.
	startCtx, cancel := context.WithTimeout(context.Background(), cfg.CatalogTimeout+10*time.Second)
	if err := ctrl.Start(startCtx); err != nil {
		logger.Error("initial catalog load failed", zap.Error(err))
	}
	cancel()

	if cfg.RefreshSchedule != "" {
		sched, err := scheduler.New(cfg.RefreshSchedule, ctrl, cfg.CatalogTimeout+10*time.Second, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			sched.Stop(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      api.NewRouter(ctrl, hub, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CatalogTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func gormLogLevel(level string) gormLogger.LogLevel {
	switch level {
	case "debug":
		return gormLogger.Info
	case "error":
		return gormLogger.Error
	default:
		return gormLogger.Warn
	}
}
