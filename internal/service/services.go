package service

import (
	"fmt"

	"github.com/dom/superhero-teams/internal/catalog"
	"github.com/dom/superhero-teams/internal/config"
	"github.com/dom/superhero-teams/internal/gate"
	"github.com/dom/superhero-teams/internal/metrics"
	"github.com/dom/superhero-teams/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Catalog *catalog.Client
	Sync    *SyncService
	Gate    *gate.Gate
}

func NewServices(store repository.Store, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	platform, err := NewDevicePlatform(cfg)
	if err != nil {
		return nil, err
	}

	client := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout, logger)
	return &Services{
		Catalog: client,
		Sync:    NewSyncService(store, client, logger),
		Gate: gate.New(platform, logger, func(code gate.Code) {
			metrics.RecordGateOutcome(string(code))
		}),
	}, nil
}

// NewDevicePlatform builds the PIN platform. With neither DEVICE_PIN nor
// DEVICE_PIN_HASH set the device counts as not enrolled and every team
// change is refused.
func NewDevicePlatform(cfg *config.Config) (*gate.PINPlatform, error) {
	hash := []byte(cfg.DevicePINHash)
	if cfg.DevicePIN != "" {
		var err error
		hash, err = gate.HashPIN(cfg.DevicePIN, cfg.DevicePINCost)
		if err != nil {
			return nil, fmt.Errorf("hash device pin: %w", err)
		}
	}

	return gate.NewPINPlatform(gate.PINConfig{
		Hash:           hash,
		MaxAttempts:    cfg.GateMaxAttempts,
		LockoutPeriod:  cfg.GateLockout,
		PermanentAfter: cfg.GatePermanentAfter,
	}), nil
}
