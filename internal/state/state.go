package state

import (
	"sort"

	"github.com/dom/superhero-teams/internal/domain"
)

// State is the in-memory projection the presentation layer reads. It is
// replaced wholesale by Reduce and never mutated in place.
type State struct {
	Heroes    []domain.Hero `json:"heroes"`
	Favorites []domain.Hero `json:"favorites"`
	Teams     []domain.Team `json:"teams"`
	Loading   bool          `json:"loading"`
	Error     string        `json:"error,omitempty"`
}

func Initial() State {
	return State{
		Heroes:    []domain.Hero{},
		Favorites: []domain.Hero{},
		Teams:     []domain.Team{},
	}
}

type Action interface {
	actionName() string
}

type SetLoading struct{ Loading bool }

type SetError struct{ Message string }

type SetHeroes struct{ Heroes []domain.Hero }

type SetFavorites struct{ Favorites []domain.Hero }

type SetTeams struct{ Teams []domain.Team }

// ToggleFavorite records the new flag of one hero.
type ToggleFavorite struct {
	HeroID   int
	Favorite bool
}

type AddTeam struct{ Team domain.Team }

type DeleteTeam struct{ TeamID string }

type AddMember struct {
	TeamID string
	Hero   domain.Hero
}

type RemoveMember struct {
	TeamID string
	HeroID int
}

func (SetLoading) actionName() string     { return "set-loading" }
func (SetError) actionName() string       { return "set-error" }
func (SetHeroes) actionName() string      { return "set-heroes" }
func (SetFavorites) actionName() string   { return "set-favorites" }
func (SetTeams) actionName() string       { return "set-teams" }
func (ToggleFavorite) actionName() string { return "toggle-favorite" }
func (AddTeam) actionName() string        { return "add-team" }
func (DeleteTeam) actionName() string     { return "delete-team" }
func (AddMember) actionName() string      { return "add-member" }
func (RemoveMember) actionName() string   { return "remove-member" }

// Reduce is the only place state transitions happen.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case SetLoading:
		s.Loading = a.Loading

	case SetError:
		s.Error = a.Message

	case SetHeroes:
		s.Heroes = cloneHeroes(a.Heroes)

	case SetFavorites:
		s.Favorites = cloneHeroes(a.Favorites)
		favorite := make(map[int]bool, len(a.Favorites))
		for _, h := range a.Favorites {
			favorite[h.ID] = true
		}
		s.Heroes = mapHeroes(s.Heroes, func(h domain.Hero) domain.Hero {
			h.IsFavorite = favorite[h.ID]
			return h
		})

	case SetTeams:
		teams := make([]domain.Team, len(a.Teams))
		for i, t := range a.Teams {
			teams[i] = cloneTeam(t)
		}
		s.Teams = teams

	case ToggleFavorite:
		var toggled *domain.Hero
		s.Heroes = mapHeroes(s.Heroes, func(h domain.Hero) domain.Hero {
			if h.ID == a.HeroID {
				h.IsFavorite = a.Favorite
				toggled = &h
			}
			return h
		})

		favorites := make([]domain.Hero, 0, len(s.Favorites)+1)
		for _, h := range s.Favorites {
			if h.ID != a.HeroID {
				favorites = append(favorites, h)
			}
		}
		if a.Favorite && toggled != nil {
			favorites = append(favorites, *toggled)
			sortHeroes(favorites)
		}
		s.Favorites = favorites

		s.Teams = mapTeams(s.Teams, func(t domain.Team) domain.Team {
			t.Members = mapHeroes(t.Members, func(h domain.Hero) domain.Hero {
				if h.ID == a.HeroID {
					h.IsFavorite = a.Favorite
				}
				return h
			})
			return t
		})

	case AddTeam:
		for _, t := range s.Teams {
			if t.ID == a.Team.ID {
				return s
			}
		}
		teams := make([]domain.Team, 0, len(s.Teams)+1)
		teams = append(teams, s.Teams...)
		teams = append(teams, cloneTeam(a.Team))
		sort.SliceStable(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
		s.Teams = teams

	case DeleteTeam:
		teams := make([]domain.Team, 0, len(s.Teams))
		for _, t := range s.Teams {
			if t.ID != a.TeamID {
				teams = append(teams, t)
			}
		}
		s.Teams = teams

	case AddMember:
		s.Teams = mapTeams(s.Teams, func(t domain.Team) domain.Team {
			if t.ID != a.TeamID || t.HasMember(a.Hero.ID) {
				return t
			}
			members := make([]domain.Hero, 0, len(t.Members)+1)
			members = append(members, t.Members...)
			members = append(members, a.Hero)
			sortHeroes(members)
			t.Members = members
			return t
		})

	case RemoveMember:
		s.Teams = mapTeams(s.Teams, func(t domain.Team) domain.Team {
			if t.ID != a.TeamID {
				return t
			}
			members := make([]domain.Hero, 0, len(t.Members))
			for _, m := range t.Members {
				if m.ID != a.HeroID {
					members = append(members, m)
				}
			}
			t.Members = members
			return t
		})
	}
	return s
}

func sortHeroes(heroes []domain.Hero) {
	sort.SliceStable(heroes, func(i, j int) bool {
		if heroes[i].Name != heroes[j].Name {
			return heroes[i].Name < heroes[j].Name
		}
		return heroes[i].ID < heroes[j].ID
	})
}

func cloneHeroes(heroes []domain.Hero) []domain.Hero {
	out := make([]domain.Hero, len(heroes))
	copy(out, heroes)
	return out
}

func cloneTeam(t domain.Team) domain.Team {
	t.Members = cloneHeroes(t.Members)
	return t
}

func mapHeroes(heroes []domain.Hero, fn func(domain.Hero) domain.Hero) []domain.Hero {
	out := make([]domain.Hero, len(heroes))
	for i, h := range heroes {
		out[i] = fn(h)
	}
	return out
}

func mapTeams(teams []domain.Team, fn func(domain.Team) domain.Team) []domain.Team {
	out := make([]domain.Team, len(teams))
	for i, t := range teams {
		out[i] = fn(t)
	}
	return out
}
