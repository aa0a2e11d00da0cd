package repository

import (
	"context"

	"github.com/dom/superhero-teams/internal/domain"
)

type HeroRepository interface {
	UpsertHeroes(ctx context.Context, heroes []domain.Hero) error
	ListHeroes(ctx context.Context) ([]domain.Hero, error)
	ListFavorites(ctx context.Context) ([]domain.Hero, error)
	SearchHeroes(ctx context.Context, query string) ([]domain.Hero, error)
	GetHero(ctx context.Context, id int) (*domain.Hero, error)
	CountHeroes(ctx context.Context) (int64, error)
	ToggleFavorite(ctx context.Context, id int) error
}

type TeamRepository interface {
	CreateTeam(ctx context.Context, team *domain.Team) error
	ListTeams(ctx context.Context) ([]domain.Team, error)
	GetTeam(ctx context.Context, id string) (*domain.Team, error)
	ListTeamMembers(ctx context.Context, teamID string) ([]domain.Hero, error)
	AddMember(ctx context.Context, teamID string, heroID int) error
	RemoveMember(ctx context.Context, teamID string, heroID int) error
	DeleteTeam(ctx context.Context, teamID string) error
}

// Store is the single local persistence boundary. Every call made before
// Initialize returns fails with domain.ErrStoreNotInitialized.
type Store interface {
	HeroRepository
	TeamRepository
	Initialize(ctx context.Context) error
	Close() error
}
