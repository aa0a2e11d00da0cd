package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dom/superhero-teams/internal/catalog"
	"github.com/dom/superhero-teams/internal/domain"
	repoPostgres "github.com/dom/superhero-teams/internal/repository/postgres"
	"github.com/dom/superhero-teams/internal/service"
	"github.com/dom/superhero-teams/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSyncService(t *testing.T, testDB *testutil.TestDB, cs *testutil.CatalogServer) *service.SyncService {
	t.Helper()
	client := catalog.NewClient(cs.URL(), 5*time.Second, zaptest.NewLogger(t))
	return service.NewSyncService(testDB.Store, client, zaptest.NewLogger(t))
}

func TestSyncService_BootstrapEmptyStore(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	cs := testutil.NewCatalogServer(t,
		testutil.NewHeroBuilder(1).WithName("A").Raw(),
		testutil.NewHeroBuilder(2).WithName("B").Raw(),
	)
	sync := newSyncService(t, testDB, cs)

	snap, err := sync.Bootstrap(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Refreshed)
	require.Len(t, snap.Heroes, 2)
	assert.Equal(t, 1, snap.Heroes[0].ID)
	assert.InDelta(t, 50.00, snap.Heroes[0].PowerScore, 0.001)
	assert.Empty(t, snap.Favorites)
	assert.Empty(t, snap.Teams)
	assert.EqualValues(t, 2, testDB.CountRows(t, "heroes"))
	assert.Equal(t, 1, cs.Requests())
}

func TestSyncService_BootstrapUsesLocalCatalog(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.SeedHeroes(t, testDB.Store, 3)
	require.NoError(t, testDB.Store.ToggleFavorite(ctx, 2))
	team := &domain.Team{Name: "Avengers"}
	require.NoError(t, testDB.Store.CreateTeam(ctx, team))
	require.NoError(t, testDB.Store.AddMember(ctx, team.ID, 1))

	cs := testutil.NewCatalogServer(t, testutil.RawHeroes(10)...)
	sync := newSyncService(t, testDB, cs)

	snap, err := sync.Bootstrap(ctx)
	require.NoError(t, err)

	assert.False(t, snap.Refreshed)
	assert.Len(t, snap.Heroes, 3)
	testutil.AssertHeroIDs(t, snap.Favorites, 2)
	require.Len(t, snap.Teams, 1)
	testutil.AssertHeroIDs(t, snap.Teams[0].Members, 1)
	assert.Zero(t, cs.Requests(), "a populated store never hits the network")
}

func TestSyncService_RefreshPreservesLocalState(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	ctx := context.Background()
	cs := testutil.NewCatalogServer(t, testutil.RawHeroes(2)...)
	sync := newSyncService(t, testDB, cs)

	_, err := sync.Bootstrap(ctx)
	require.NoError(t, err)
	require.NoError(t, testDB.Store.ToggleFavorite(ctx, 1))

	cs.SetHeroes(t,
		testutil.NewHeroBuilder(1).WithName("Renamed").WithStat("strength", "100").Raw(),
		testutil.NewHeroBuilder(2).Raw(),
		testutil.NewHeroBuilder(3).Raw(),
	)

	snap, err := sync.Refresh(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Heroes, 3)
	testutil.AssertHeroIDs(t, snap.Favorites, 1)
	assert.Equal(t, "Renamed", snap.Favorites[0].Name)
	assert.InDelta(t, 60.0, snap.Favorites[0].PowerScore, 0.001)
}

func TestSyncService_RefreshFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, want: domain.ErrCatalogUnavailable},
		{name: "not an array", status: http.StatusOK, body: `{"id":1}`, want: domain.ErrCatalogMalformed},
		{name: "truncated payload", status: http.StatusOK, body: `[{"id":1,`, want: domain.ErrCatalogMalformed},
	}

	testDB := testutil.NewTestDB(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			testutil.SeedHeroes(t, testDB.Store, 2)

			cs := testutil.NewCatalogServer(t)
			cs.SetResponse(tt.status, []byte(tt.body))
			sync := newSyncService(t, testDB, cs)

			snap, err := sync.Refresh(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, snap)
			assert.EqualValues(t, 2, testDB.CountRows(t, "heroes"))
		})
	}
}

// flakyInitStore fails schema setup a fixed number of times before
// delegating to the real store.
type flakyInitStore struct {
	*repoPostgres.Store
	failures int
}

func (s *flakyInitStore) Initialize(ctx context.Context) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("connection refused")
	}
	return s.Store.Initialize(ctx)
}

func TestSyncService_RefreshRecoversFromFailedInitialize(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	ctx := context.Background()
	cs := testutil.NewCatalogServer(t, testutil.RawHeroes(2)...)

	// A second store over the same connection that has never been initialized.
	store := &flakyInitStore{Store: repoPostgres.NewStore(testDB.DB, zaptest.NewLogger(t)), failures: 1}
	client := catalog.NewClient(cs.URL(), 5*time.Second, zaptest.NewLogger(t))
	sync := service.NewSyncService(store, client, zaptest.NewLogger(t))

	_, err := sync.Bootstrap(ctx)
	require.Error(t, err)
	assert.Zero(t, cs.Requests())

	snap, err := sync.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Heroes, 2)
	assert.EqualValues(t, 2, testDB.CountRows(t, "heroes"))
}
