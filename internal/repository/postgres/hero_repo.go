package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/superhero-teams/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

// UpsertHeroes inserts new heroes and refreshes catalog fields of existing
// ones in a single transaction. Favorite flags of existing rows survive.
func (s *Store) UpsertHeroes(ctx context.Context, heroes []domain.Hero) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if len(heroes) == 0 {
		return nil
	}

	now := s.now()
	byID := make(map[int]int, len(heroes))
	rows := make([]heroRecord, 0, len(heroes))
	for _, h := range heroes {
		rec, err := newHeroRecord(h, now)
		if err != nil {
			return err
		}
		// Postgres rejects an ON CONFLICT batch touching the same id twice.
		if i, ok := byID[h.ID]; ok {
			rows[i] = rec
			continue
		}
		byID[h.ID] = len(rows)
		rows = append(rows, rec)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).CreateInBatches(rows, upsertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("upsert heroes: %w", err)
	}

	s.logger.Debug("heroes upserted", zap.Int("count", len(rows)))
	return nil
}

func (s *Store) ListHeroes(ctx context.Context) ([]domain.Hero, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []heroRecord
	if err := db.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list heroes: %w", err)
	}
	return heroesFromRecords(rows)
}

func (s *Store) ListFavorites(ctx context.Context) ([]domain.Hero, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rows []heroRecord
	err = db.Where("is_favorite = ?", true).
		Order("name ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return heroesFromRecords(rows)
}

// SearchHeroes matches query as a case-insensitive substring of the hero
// name or real name. An empty query lists everything.
func (s *Store) SearchHeroes(ctx context.Context, query string) ([]domain.Hero, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListHeroes(ctx)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(query) + "%"
	var rows []heroRecord
	err = db.Where("name ILIKE ? OR real_name ILIKE ?", pattern, pattern).
		Order("name ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search heroes: %w", err)
	}
	return heroesFromRecords(rows)
}

func (s *Store) GetHero(ctx context.Context, id int) (*domain.Hero, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var row heroRecord
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHeroNotFound
		}
		return nil, fmt.Errorf("get hero %d: %w", id, err)
	}

	hero, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &hero, nil
}

func (s *Store) CountHeroes(ctx context.Context) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&heroRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count heroes: %w", err)
	}
	return count, nil
}

// ToggleFavorite flips the flag in one UPDATE statement.
func (s *Store) ToggleFavorite(ctx context.Context, id int) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&heroRecord{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"is_favorite": gorm.Expr("NOT is_favorite"),
			"updated_at":  s.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("toggle favorite %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrHeroNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
