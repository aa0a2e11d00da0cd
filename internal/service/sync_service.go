package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/superhero-teams/internal/catalog"
	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/metrics"
	"github.com/dom/superhero-teams/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CatalogFetcher interface {
	FetchAll(ctx context.Context) ([]catalog.RawHero, error)
}

// SyncService decides whether a session runs on the local catalog or pulls
// a fresh one, and writes fetched data through to the store.
type SyncService struct {
	store   repository.Store
	fetcher CatalogFetcher
	logger  *zap.Logger
}

func NewSyncService(store repository.Store, fetcher CatalogFetcher, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		store:   store,
		fetcher: fetcher,
		logger:  logger.Named("sync"),
	}
}

// Bootstrap initializes the store and serves the local catalog when there
// is one. Only an empty store triggers a network refresh.
func (s *SyncService) Bootstrap(ctx context.Context) (*domain.CatalogSnapshot, error) {
	if err := s.store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	heroes, err := s.store.ListHeroes(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	if len(heroes) == 0 {
		s.logger.Info("local catalog is empty, refreshing from remote")
		return s.Refresh(ctx)
	}

	favorites, teams, err := s.readOverlay(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	metrics.SetCatalogSize(len(heroes))
	s.logger.Info("serving local catalog",
		zap.Int("heroes", len(heroes)),
		zap.Int("favorites", len(favorites)),
		zap.Int("teams", len(teams)),
	)

	return &domain.CatalogSnapshot{
		Heroes:    heroes,
		Favorites: favorites,
		Teams:     teams,
	}, nil
}

// Refresh pulls the whole remote catalog and upserts it. Nothing is written
// unless the fetch and decode both succeed.
func (s *SyncService) Refresh(ctx context.Context) (*domain.CatalogSnapshot, error) {
	start := time.Now()
	snapshot, err := s.refresh(ctx)
	metrics.ObserveSync(err, time.Since(start))

	if err != nil {
		s.logger.Error("catalog refresh failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	metrics.SetCatalogSize(len(snapshot.Heroes))
	s.logger.Info("catalog refreshed",
		zap.Int("heroes", len(snapshot.Heroes)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snapshot, nil
}

func (s *SyncService) refresh(ctx context.Context) (*domain.CatalogSnapshot, error) {
	// Retries a schema setup that failed at boot; no-op on a ready store.
	if err := s.store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	raws, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if err := s.store.UpsertHeroes(ctx, catalog.TransformAll(raws)); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	heroes, err := s.store.ListHeroes(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	favorites, teams, err := s.readOverlay(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return &domain.CatalogSnapshot{
		Heroes:    heroes,
		Favorites: favorites,
		Teams:     teams,
		Refreshed: true,
	}, nil
}

// readOverlay loads favorites and teams concurrently; neither depends on
// the other.
func (s *SyncService) readOverlay(ctx context.Context) ([]domain.Hero, []domain.Team, error) {
	var (
		favorites []domain.Hero
		teams     []domain.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		favorites, err = s.store.ListFavorites(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.store.ListTeams(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return favorites, teams, nil
}
