package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/gate"
	"github.com/dom/superhero-teams/internal/metrics"
	"github.com/dom/superhero-teams/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Syncer interface {
	Bootstrap(ctx context.Context) (*domain.CatalogSnapshot, error)
	Refresh(ctx context.Context) (*domain.CatalogSnapshot, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, prompt string) gate.Result
}

type Option func(*Controller)

// WithIDGenerator overrides how new team ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// Controller owns the in-memory projection and is the only thing callers
// use to read or change it. Public operations run one at a time.
type Controller struct {
	store  repository.Store
	syncer Syncer
	gate   Authenticator
	logger *zap.Logger
	newID  func() string

	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

func NewController(store repository.Store, syncer Syncer, authenticator Authenticator, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:     store,
		syncer:    syncer,
		gate:      authenticator,
		logger:    logger.Named("controller"),
		newID:     uuid.NewString,
		state:     Initial(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot; callers may keep it.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers fn to receive the state after every operation. The
// returned func removes it.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) dispatch(actions ...Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range actions {
		c.state = Reduce(c.state, a)
	}
}

func (c *Controller) publish() {
	c.mu.RLock()
	s := c.state
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (c *Controller) run(op string, fn func() error) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	err := fn()
	metrics.RecordOperation(op, err)
	c.publish()
	return err
}

// fail records err as the user-facing error and hands it back.
func (c *Controller) fail(op, message string, err error) error {
	var gateErr *gate.Error
	if errors.As(err, &gateErr) {
		message = gateErr.Message
	}
	c.logger.Error("operation failed", zap.String("operation", op), zap.Error(err))
	c.dispatch(SetError{Message: message})
	return err
}

func (c *Controller) authenticate(ctx context.Context, prompt string) error {
	return c.gate.Authenticate(ctx, prompt).Err()
}

func (c *Controller) applySnapshot(snap *domain.CatalogSnapshot) {
	c.dispatch(
		SetHeroes{Heroes: snap.Heroes},
		SetFavorites{Favorites: snap.Favorites},
		SetTeams{Teams: snap.Teams},
	)
}

// Start loads the local catalog, or the remote one on first run.
func (c *Controller) Start(ctx context.Context) error {
	return c.run("start", func() error {
		c.dispatch(SetLoading{Loading: true}, SetError{})
		defer c.dispatch(SetLoading{Loading: false})

		snap, err := c.syncer.Bootstrap(ctx)
		if err != nil {
			return c.fail("start", "Error initializing the application", err)
		}
		c.applySnapshot(snap)
		return nil
	})
}

func (c *Controller) RefreshSuperheroes(ctx context.Context) error {
	return c.run("refresh", func() error {
		c.dispatch(SetLoading{Loading: true}, SetError{})
		defer c.dispatch(SetLoading{Loading: false})

		snap, err := c.syncer.Refresh(ctx)
		if err != nil {
			return c.fail("refresh", "Error loading superheroes", err)
		}
		c.applySnapshot(snap)
		return nil
	})
}

func (c *Controller) AddToFavorites(ctx context.Context, heroID int) error {
	return c.run("add_favorite", func() error {
		if err := c.setFavorite(ctx, heroID, true); err != nil {
			return c.fail("add_favorite", "Error adding to favorites", err)
		}
		return nil
	})
}

func (c *Controller) RemoveFromFavorites(ctx context.Context, heroID int) error {
	return c.run("remove_favorite", func() error {
		if err := c.setFavorite(ctx, heroID, false); err != nil {
			return c.fail("remove_favorite", "Error removing from favorites", err)
		}
		return nil
	})
}

// setFavorite flips the stored flag only when it differs from want, so
// repeating an add or remove leaves the hero where it is.
func (c *Controller) setFavorite(ctx context.Context, heroID int, want bool) error {
	hero, err := c.store.GetHero(ctx, heroID)
	if err != nil {
		return err
	}
	if hero.IsFavorite != want {
		if err := c.store.ToggleFavorite(ctx, heroID); err != nil {
			return err
		}
	}
	c.dispatch(ToggleFavorite{HeroID: heroID, Favorite: want})

	favorites, err := c.store.ListFavorites(ctx)
	if err != nil {
		return err
	}
	c.dispatch(SetFavorites{Favorites: favorites})
	return nil
}

// CreateTeam returns the new team's id.
func (c *Controller) CreateTeam(ctx context.Context, name string) (string, error) {
	var id string
	err := c.run("create_team", func() error {
		const msg = "Error creating team"
		name = strings.TrimSpace(name)
		if err := domain.ValidateTeamName(name); err != nil {
			return c.fail("create_team", msg, err)
		}
		if err := c.authenticate(ctx, "Authenticate to create a team"); err != nil {
			return c.fail("create_team", msg, err)
		}

		team := &domain.Team{ID: c.newID(), Name: name, Members: []domain.Hero{}}
		if err := c.store.CreateTeam(ctx, team); err != nil {
			return c.fail("create_team", msg, err)
		}
		c.dispatch(AddTeam{Team: *team})

		if err := c.reloadTeams(ctx); err != nil {
			return c.fail("create_team", msg, err)
		}
		id = team.ID
		return nil
	})
	return id, err
}

func (c *Controller) AddMemberToTeam(ctx context.Context, teamID string, heroID int) error {
	return c.run("add_member", func() error {
		const msg = "Error adding member to team"
		if err := c.authenticate(ctx, "Authenticate to change a team"); err != nil {
			return c.fail("add_member", msg, err)
		}
		if err := c.store.AddMember(ctx, teamID, heroID); err != nil {
			return c.fail("add_member", msg, err)
		}

		hero, err := c.store.GetHero(ctx, heroID)
		if err != nil {
			return c.fail("add_member", msg, err)
		}
		c.dispatch(AddMember{TeamID: teamID, Hero: *hero})

		if err := c.reloadTeams(ctx); err != nil {
			return c.fail("add_member", msg, err)
		}
		return nil
	})
}

func (c *Controller) RemoveMemberFromTeam(ctx context.Context, teamID string, heroID int) error {
	return c.run("remove_member", func() error {
		const msg = "Error removing member from team"
		if err := c.authenticate(ctx, "Authenticate to change a team"); err != nil {
			return c.fail("remove_member", msg, err)
		}
		if err := c.store.RemoveMember(ctx, teamID, heroID); err != nil {
			return c.fail("remove_member", msg, err)
		}
		c.dispatch(RemoveMember{TeamID: teamID, HeroID: heroID})

		if err := c.reloadTeams(ctx); err != nil {
			return c.fail("remove_member", msg, err)
		}
		return nil
	})
}

func (c *Controller) DeleteTeam(ctx context.Context, teamID string) error {
	return c.run("delete_team", func() error {
		const msg = "Error deleting team"
		if err := c.authenticate(ctx, "Authenticate to delete a team"); err != nil {
			return c.fail("delete_team", msg, err)
		}
		if err := c.store.DeleteTeam(ctx, teamID); err != nil {
			return c.fail("delete_team", msg, err)
		}
		c.dispatch(DeleteTeam{TeamID: teamID})

		if err := c.reloadTeams(ctx); err != nil {
			return c.fail("delete_team", msg, err)
		}
		return nil
	})
}

func (c *Controller) reloadTeams(ctx context.Context) error {
	teams, err := c.store.ListTeams(ctx)
	if err != nil {
		return fmt.Errorf("reload teams: %w", err)
	}
	c.dispatch(SetTeams{Teams: teams})
	return nil
}

// SearchHeroes reads straight from the store and does not touch state.
func (c *Controller) SearchHeroes(ctx context.Context, query string) ([]domain.Hero, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.State().Heroes, nil
	}
	heroes, err := c.store.SearchHeroes(ctx, query)
	metrics.RecordOperation("search", err)
	if err != nil {
		return nil, err
	}
	return heroes, nil
}

// FindHero looks up a hero in the current projection.
func (c *Controller) FindHero(id int) (domain.Hero, bool) {
	for _, h := range c.State().Heroes {
		if h.ID == id {
			return h, true
		}
	}
	return domain.Hero{}, false
}

func (c *Controller) FindTeam(id string) (domain.Team, bool) {
	for _, t := range c.State().Teams {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Team{}, false
}

func (c *Controller) ClearError() {
	c.dispatch(SetError{})
	c.publish()
}
