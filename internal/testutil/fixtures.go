package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dom/superhero-teams/internal/api/middleware"
	"github.com/dom/superhero-teams/internal/catalog"
	"github.com/dom/superhero-teams/internal/domain"
	"github.com/dom/superhero-teams/internal/repository"
)

// HeroBuilder creates remote catalog records with a builder pattern
type HeroBuilder struct {
	id       int
	name     string
	fullName *string
	stats    map[string]interface{}
}

// NewHeroBuilder creates a hero whose stats are all the text "50"
func NewHeroBuilder(id int) *HeroBuilder {
	return &HeroBuilder{
		id:   id,
		name: fmt.Sprintf("Hero %03d", id),
		stats: map[string]interface{}{
			"intelligence": "50",
			"strength":     "50",
			"speed":        "50",
			"durability":   "50",
			"power":        "50",
			"combat":       "50",
		},
	}
}

// WithName sets the hero name
func (b *HeroBuilder) WithName(name string) *HeroBuilder {
	b.name = name
	return b
}

// WithFullName sets biography.fullName
func (b *HeroBuilder) WithFullName(fullName string) *HeroBuilder {
	b.fullName = &fullName
	return b
}

// WithStat sets one powerstat; value may be a string, a number or nil
func (b *HeroBuilder) WithStat(stat string, value interface{}) *HeroBuilder {
	b.stats[stat] = value
	return b
}

// Raw returns the record as the remote catalog serves it
func (b *HeroBuilder) Raw() map[string]interface{} {
	raw := map[string]interface{}{
		"id":         b.id,
		"name":       b.name,
		"slug":       fmt.Sprintf("%d-%s", b.id, strings.ToLower(strings.ReplaceAll(b.name, " ", "-"))),
		"powerstats": b.stats,
		"appearance": map[string]interface{}{"gender": "Male", "race": "Human"},
		"work":       map[string]interface{}{"occupation": "-"},
		"images":     map[string]interface{}{"sm": fmt.Sprintf("https://example.test/%d.jpg", b.id)},
	}
	if b.fullName != nil {
		raw["biography"] = map[string]interface{}{"fullName": *b.fullName}
	}
	return raw
}

// Domain returns the hero as it is stored after ingestion
func (b *HeroBuilder) Domain(t *testing.T) domain.Hero {
	t.Helper()

	data, err := json.Marshal(b.Raw())
	if err != nil {
		t.Fatalf("failed to marshal hero: %v", err)
	}
	var raw catalog.RawHero
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to decode hero: %v", err)
	}
	return catalog.Transform(raw)
}

// SeedHeroes upserts count heroes with ids 1..count and returns them
func SeedHeroes(t *testing.T, store repository.Store, count int) []domain.Hero {
	t.Helper()

	heroes := make([]domain.Hero, count)
	for i := range heroes {
		heroes[i] = NewHeroBuilder(i + 1).Domain(t)
	}
	if err := store.UpsertHeroes(context.Background(), heroes); err != nil {
		t.Fatalf("failed to seed heroes: %v", err)
	}
	return heroes
}

// RawHeroes returns count remote records with ids 1..count
func RawHeroes(count int) []map[string]interface{} {
	out := make([]map[string]interface{}, count)
	for i := range out {
		out[i] = NewHeroBuilder(i + 1).Raw()
	}
	return out
}

// CatalogServer is a fake remote catalog
type CatalogServer struct {
	server   *httptest.Server
	requests atomic.Int32

	mu     sync.Mutex
	status int
	body   []byte
}

// NewCatalogServer serves heroes as a JSON array
func NewCatalogServer(t *testing.T, heroes ...map[string]interface{}) *CatalogServer {
	t.Helper()

	cs := &CatalogServer{status: http.StatusOK}
	cs.SetHeroes(t, heroes...)
	cs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.requests.Add(1)
		cs.mu.Lock()
		status, body := cs.status, cs.body
		cs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(cs.server.Close)
	return cs
}

// SetHeroes replaces the served catalog
func (cs *CatalogServer) SetHeroes(t *testing.T, heroes ...map[string]interface{}) {
	t.Helper()

	if heroes == nil {
		heroes = []map[string]interface{}{}
	}
	body, err := json.Marshal(heroes)
	if err != nil {
		t.Fatalf("failed to marshal catalog: %v", err)
	}
	cs.SetResponse(http.StatusOK, body)
}

// SetResponse serves an arbitrary status and body
func (cs *CatalogServer) SetResponse(status int, body []byte) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status = status
	cs.body = body
}

func (cs *CatalogServer) URL() string {
	return cs.server.URL
}

// Requests returns how many times the catalog was fetched
func (cs *CatalogServer) Requests() int {
	return int(cs.requests.Load())
}

// NewRequest creates an API request; pin is sent as the device credential
// when non-empty
func NewRequest(t *testing.T, method, url string, body interface{}, pin string) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if pin != "" {
		req.Header.Set(middleware.DevicePinHeader, pin)
	}

	return req
}

// Do sends req with the default client
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
