package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	stateOpen int32 = iota
	stateReady
	stateClosed
)

// Store implements repository.Store on GORM. It moves through
// open -> ready -> closed; only a ready store serves queries.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
	state  atomic.Int32
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		logger: logger.Named("store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Initialize creates the schema. Calling it on a ready store is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	switch s.state.Load() {
	case stateReady:
		return nil
	case stateClosed:
		return domain.ErrStoreClosed
	}

	err := s.db.WithContext(ctx).AutoMigrate(
		&heroRecord{},
		&teamRecord{},
		&teamMemberRecord{},
	)
	if err != nil {
		s.logger.Error("schema migration failed", zap.Error(err))
		return fmt.Errorf("initialize store: %w", err)
	}

	s.state.CompareAndSwap(stateOpen, stateReady)
	s.logger.Info("store initialized")
	return nil
}

func (s *Store) Close() error {
	if s.state.Swap(stateClosed) == stateClosed {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	switch s.state.Load() {
	case stateReady:
		return s.db.WithContext(ctx), nil
	case stateClosed:
		return nil, domain.ErrStoreClosed
	default:
		return nil, domain.ErrStoreNotInitialized
	}
}
