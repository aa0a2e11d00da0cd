package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/superhero-teams/internal/api/handlers"
	"github.com/dom/superhero-teams/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeroHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t,
		testutil.NewHeroBuilder(1).WithName("Batman").WithFullName("Bruce Wayne").Raw(),
		testutil.NewHeroBuilder(2).WithName("Superman").WithFullName("Clark Kent").Raw(),
		testutil.NewHeroBuilder(3).WithName("Batgirl").Raw(),
	)

	tests := []struct {
		name string
		path string
		want []int
	}{
		{name: "all heroes by name", path: "/heroes", want: []int{3, 1, 2}},
		{name: "search by name", path: "/heroes?q=bat", want: []int{3, 1}},
		{name: "search by real name", path: "/heroes?q=kent", want: []int{2}},
		{name: "no match", path: "/heroes?q=joker", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.APIURL(tt.path), nil, ""))
			testutil.AssertStatusCode(t, resp, http.StatusOK)

			var body handlers.HeroesResponse
			testutil.AssertJSONResponse(t, resp, &body)
			testutil.AssertHeroIDs(t, body.Heroes, tt.want...)
			assert.Equal(t, len(tt.want), body.Count)
		})
	}
}

func TestHeroHandler_Get(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.RawHeroes(2)...)

	t.Run("existing hero", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.APIURL("/heroes/1"), nil, ""))
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var hero struct {
			ID         int     `json:"id"`
			PowerScore float64 `json:"powerScore"`
			IsFavorite bool    `json:"isFavorite"`
		}
		testutil.AssertJSONResponse(t, resp, &hero)
		assert.Equal(t, 1, hero.ID)
		assert.InDelta(t, 50.0, hero.PowerScore, 0.001)
		assert.False(t, hero.IsFavorite)
	})

	t.Run("unknown hero", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.APIURL("/heroes/99"), nil, ""))
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "HERO_NOT_FOUND")
	})

	t.Run("bad id", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.APIURL("/heroes/abc"), nil, ""))
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "INVALID_HERO_ID")
	})
}

func TestHeroHandler_Refresh(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.RawHeroes(2)...)
	require.Equal(t, 1, ts.Catalog.Requests())

	ts.Catalog.SetHeroes(t, testutil.RawHeroes(5)...)
	resp := testutil.Do(t, testutil.NewRequest(t, http.MethodPost, ts.APIURL("/heroes/refresh"), nil, ""))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body handlers.HeroesResponse
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, 5, body.Count)
	assert.Equal(t, 2, ts.Catalog.Requests())

	ts.Catalog.SetResponse(http.StatusBadGateway, []byte("down"))
	resp = testutil.Do(t, testutil.NewRequest(t, http.MethodPost, ts.APIURL("/heroes/refresh"), nil, ""))
	testutil.AssertErrorResponse(t, resp, http.StatusInternalServerError, "INTERNAL")

	resp = testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.APIURL("/state"), nil, ""))
	var st handlers.StateResponse
	testutil.AssertJSONResponse(t, resp, &st)
	assert.Equal(t, "Error loading superheroes", st.Error)
	assert.Equal(t, 5, st.Heroes)
	assert.False(t, st.Loading)

	resp = testutil.Do(t, testutil.NewRequest(t, http.MethodDelete, ts.APIURL("/state/error"), nil, ""))
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)
	assert.Empty(t, ts.Controller.State().Error)
}

func TestFavoriteHandler(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.RawHeroes(3)...)

	put := func(id string) *http.Response {
		return testutil.Do(t, testutil.NewRequest(t, http.MethodPut, ts.APIURL("/favorites/"+id), nil, ""))
	}
	del := func(id string) *http.Response {
		return testutil.Do(t, testutil.NewRequest(t, http.MethodDelete, ts.APIURL("/favorites/"+id), nil, ""))
	}

	var body handlers.FavoritesResponse
	resp := put("2")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &body)
	testutil.AssertHeroIDs(t, body.Favorites, 2)

	resp = put("2")
	testutil.AssertJSONResponse(t, resp, &body)
	testutil.AssertHeroIDs(t, body.Favorites, 2)

	resp = put("1")
	testutil.AssertJSONResponse(t, resp, &body)
	testutil.AssertHeroIDs(t, body.Favorites, 1, 2)

	resp = del("2")
	testutil.AssertJSONResponse(t, resp, &body)
	testutil.AssertHeroIDs(t, body.Favorites, 1)

	resp = testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.APIURL("/favorites"), nil, ""))
	testutil.AssertJSONResponse(t, resp, &body)
	testutil.AssertHeroIDs(t, body.Favorites, 1)

	testutil.AssertErrorResponse(t, put("42"), http.StatusNotFound, "HERO_NOT_FOUND")
	testutil.AssertErrorResponse(t, del("x"), http.StatusBadRequest, "INVALID_HERO_ID")
}
