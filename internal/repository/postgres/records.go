package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/superhero-teams/internal/domain"
	"gorm.io/datatypes"
)

type heroRecord struct {
	ID          int            `gorm:"primaryKey;autoIncrement:false"`
	Name        string         `gorm:"not null;index:idx_heroes_name"`
	Slug        string         `gorm:"not null"`
	RealName    string         `gorm:"index:idx_heroes_real_name"`
	Powerstats  datatypes.JSON `gorm:"type:jsonb;not null"`
	Appearance  datatypes.JSON `gorm:"type:jsonb;not null"`
	Biography   datatypes.JSON `gorm:"type:jsonb;not null"`
	Work        datatypes.JSON `gorm:"type:jsonb;not null"`
	Connections datatypes.JSON `gorm:"type:jsonb;not null"`
	Images      datatypes.JSON `gorm:"type:jsonb;not null"`
	PowerScore  float64        `gorm:"not null;default:0"`
	IsFavorite  bool           `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (heroRecord) TableName() string { return "heroes" }

type teamRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (teamRecord) TableName() string { return "teams" }

type teamMemberRecord struct {
	TeamID      string    `gorm:"primaryKey"`
	SuperheroID int       `gorm:"primaryKey;autoIncrement:false;index"`
	AddedAt     time.Time `gorm:"not null"`

	Team      *teamRecord `gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:CASCADE"`
	Superhero *heroRecord `gorm:"foreignKey:SuperheroID;references:ID;constraint:OnDelete:CASCADE"`
}

func (teamMemberRecord) TableName() string { return "team_members" }

// memberRow is a hero joined with the team it belongs to.
type memberRow struct {
	Hero         heroRecord `gorm:"embedded"`
	MemberTeamID string
}

// upsertColumns are overwritten when a fetched hero already exists.
// is_favorite and created_at are locally owned and never replaced.
var upsertColumns = []string{
	"name", "slug", "real_name",
	"powerstats", "appearance", "biography", "work", "connections", "images",
	"power_score", "updated_at",
}

func newHeroRecord(h domain.Hero, now time.Time) (heroRecord, error) {
	rec := heroRecord{
		ID:         h.ID,
		Name:       h.Name,
		Slug:       h.Slug,
		RealName:   h.RealName,
		PowerScore: h.PowerScore,
		IsFavorite: h.IsFavorite,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if rec.RealName == "" {
		rec.RealName = h.Biography.FullName
	}

	blobs := []struct {
		column string
		dst    *datatypes.JSON
		value  interface{}
	}{
		{"powerstats", &rec.Powerstats, h.Powerstats},
		{"appearance", &rec.Appearance, h.Appearance},
		{"biography", &rec.Biography, h.Biography},
		{"work", &rec.Work, h.Work},
		{"connections", &rec.Connections, h.Connections},
		{"images", &rec.Images, h.Images},
	}
	for _, b := range blobs {
		data, err := json.Marshal(b.value)
		if err != nil {
			return heroRecord{}, fmt.Errorf("encode hero %d %s: %w", h.ID, b.column, err)
		}
		*b.dst = datatypes.JSON(data)
	}
	return rec, nil
}

// toDomain decodes every blob column. A blob that does not decode is
// reported as corruption for this hero, never replaced by a zero value.
func (r heroRecord) toDomain() (domain.Hero, error) {
	h := domain.Hero{
		ID:         r.ID,
		Name:       r.Name,
		Slug:       r.Slug,
		RealName:   r.RealName,
		PowerScore: r.PowerScore,
		IsFavorite: r.IsFavorite,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	blobs := []struct {
		column string
		data   datatypes.JSON
		dst    interface{}
	}{
		{"powerstats", r.Powerstats, &h.Powerstats},
		{"appearance", r.Appearance, &h.Appearance},
		{"biography", r.Biography, &h.Biography},
		{"work", r.Work, &h.Work},
		{"connections", r.Connections, &h.Connections},
		{"images", r.Images, &h.Images},
	}
	for _, b := range blobs {
		if len(b.data) == 0 {
			return domain.Hero{}, fmt.Errorf("%w: hero %d: %s is empty", domain.ErrCorruptRecord, r.ID, b.column)
		}
		if err := json.Unmarshal(b.data, b.dst); err != nil {
			return domain.Hero{}, fmt.Errorf("%w: hero %d: %s: %v", domain.ErrCorruptRecord, r.ID, b.column, err)
		}
	}
	return h, nil
}

func heroesFromRecords(rows []heroRecord) ([]domain.Hero, error) {
	heroes := make([]domain.Hero, 0, len(rows))
	for _, row := range rows {
		h, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		heroes = append(heroes, h)
	}
	return heroes, nil
}

func (r teamRecord) toDomain(members []domain.Hero) domain.Team {
	if members == nil {
		members = []domain.Hero{}
	}
	return domain.Team{
		ID:        r.ID,
		Name:      r.Name,
		Members:   members,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
