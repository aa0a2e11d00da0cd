package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dom/superhero-teams/internal/api"
	"github.com/dom/superhero-teams/internal/config"
	repoPostgres "github.com/dom/superhero-teams/internal/repository/postgres"
	"github.com/dom/superhero-teams/internal/service"
	"github.com/dom/superhero-teams/internal/state"
	"github.com/dom/superhero-teams/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
	Store     *repoPostgres.Store
}

// NewTestDB starts a PostgreSQL container and returns an initialized store
// on top of it.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_superheroes"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		testDB.Cleanup()
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := repoPostgres.NewConnection(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	store := repoPostgres.NewStore(db, zaptest.NewLogger(t))
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	testDB.DB = db
	testDB.DSN = dsn
	testDB.Store = store
	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Store != nil {
		tdb.Store.Close()
	}
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"team_members", "teams", "heroes"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in table.
func (tdb *TestDB) CountRows(t *testing.T, table string) int64 {
	t.Helper()

	var n int64
	if err := tdb.DB.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// TestPIN is the device PIN accepted by TestConfig.
const TestPIN = "1234"

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Environment:        "test",
		LogLevel:           "debug",
		CatalogTimeout:     5 * time.Second,
		DevicePIN:          TestPIN,
		DevicePINCost:      4,
		GateMaxAttempts:    3,
		GateLockout:        time.Minute,
		GatePermanentAfter: 2,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server     *httptest.Server
	DB         *TestDB
	Catalog    *CatalogServer
	Services   *service.Services
	Controller *state.Controller
	Hub        *websocket.Hub
	Config     *config.Config
}

// NewTestServer wires the full stack against a fake remote catalog serving
// heroes and starts the controller.
func NewTestServer(t *testing.T, heroes ...map[string]interface{}) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	catalogServer := NewCatalogServer(t, heroes...)

	cfg := TestConfig()
	cfg.CatalogURL = catalogServer.URL()
	log := zaptest.NewLogger(t)

	services, err := service.NewServices(testDB.Store, cfg, log)
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}

	ctrl := state.NewController(testDB.Store, services.Sync, services.Gate, log)
	hub := websocket.NewHub(ctrl.State, log)
	ctrl.Subscribe(hub.Publish)
	go hub.Run()

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("failed to start controller: %v", err)
	}

	server := httptest.NewServer(api.NewRouter(ctrl, hub, log))

	ts := &TestServer{
		Server:     server,
		DB:         testDB,
		Catalog:    catalogServer,
		Services:   services,
		Controller: ctrl,
		Hub:        hub,
		Config:     cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the state stream URL
func (ts *TestServer) WebSocketURL() string {
	return "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/api/v1/ws"
}
