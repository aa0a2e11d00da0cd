package state_test

import (
	"testing"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hero(id int, name string) domain.Hero {
	return domain.Hero{ID: id, Name: name}
}

func TestReduce_SetActions(t *testing.T) {
	s := state.Initial()

	s = state.Reduce(s, state.SetLoading{Loading: true})
	assert.True(t, s.Loading)

	s = state.Reduce(s, state.SetError{Message: "boom"})
	assert.Equal(t, "boom", s.Error)

	heroes := []domain.Hero{hero(1, "A"), hero(2, "B")}
	s = state.Reduce(s, state.SetHeroes{Heroes: heroes})
	require.Len(t, s.Heroes, 2)

	// the reducer copies its input
	heroes[0].Name = "changed"
	assert.Equal(t, "A", s.Heroes[0].Name)
}

func TestReduce_SetFavoritesReconcilesFlags(t *testing.T) {
	s := state.Reduce(state.Initial(), state.SetHeroes{Heroes: []domain.Hero{
		hero(1, "A"), {ID: 2, Name: "B", IsFavorite: true},
	}})

	s = state.Reduce(s, state.SetFavorites{Favorites: []domain.Hero{hero(1, "A")}})

	assert.True(t, s.Heroes[0].IsFavorite)
	assert.False(t, s.Heroes[1].IsFavorite)
	require.Len(t, s.Favorites, 1)
	assert.Equal(t, 1, s.Favorites[0].ID)
}

func TestReduce_ToggleFavorite(t *testing.T) {
	s := state.Reduce(state.Initial(), state.SetHeroes{Heroes: []domain.Hero{hero(2, "B"), hero(1, "A")}})
	s = state.Reduce(s, state.SetTeams{Teams: []domain.Team{{ID: "t1", Name: "T", Members: []domain.Hero{hero(1, "A")}}}})

	s = state.Reduce(s, state.ToggleFavorite{HeroID: 1, Favorite: true})
	s = state.Reduce(s, state.ToggleFavorite{HeroID: 2, Favorite: true})
	require.Len(t, s.Favorites, 2)
	assert.Equal(t, "A", s.Favorites[0].Name)
	assert.True(t, s.Teams[0].Members[0].IsFavorite)

	s = state.Reduce(s, state.ToggleFavorite{HeroID: 1, Favorite: false})
	require.Len(t, s.Favorites, 1)
	assert.Equal(t, 2, s.Favorites[0].ID)
	assert.False(t, s.Heroes[1].IsFavorite)
}

func TestReduce_Teams(t *testing.T) {
	before := state.Reduce(state.Initial(), state.AddTeam{Team: domain.Team{ID: "t1", Name: "Avengers"}})
	s := state.Reduce(before, state.AddTeam{Team: domain.Team{ID: "t1", Name: "Avengers"}})
	require.Len(t, s.Teams, 1)

	s = state.Reduce(s, state.AddMember{TeamID: "t1", Hero: hero(2, "Thor")})
	s = state.Reduce(s, state.AddMember{TeamID: "t1", Hero: hero(1, "Hulk")})
	s = state.Reduce(s, state.AddMember{TeamID: "t1", Hero: hero(1, "Hulk")})
	require.Len(t, s.Teams[0].Members, 2)
	assert.Equal(t, "Hulk", s.Teams[0].Members[0].Name)

	// earlier snapshots are untouched
	assert.Empty(t, before.Teams[0].Members)

	s = state.Reduce(s, state.AddMember{TeamID: "missing", Hero: hero(3, "X")})
	assert.Len(t, s.Teams[0].Members, 2)

	s = state.Reduce(s, state.RemoveMember{TeamID: "t1", HeroID: 2})
	require.Len(t, s.Teams[0].Members, 1)
	assert.Equal(t, 1, s.Teams[0].Members[0].ID)

	s = state.Reduce(s, state.DeleteTeam{TeamID: "t1"})
	assert.Empty(t, s.Teams)
}
