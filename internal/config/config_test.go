package config_test

import (
	"testing"
	"time"

	"github.com/dom/superhero-teams/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "https://akabab.github.io/superhero-api/api/all.json", cfg.CatalogURL)
	assert.Equal(t, 30*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 5, cfg.GateMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.GateLockout)
	assert.Equal(t, 3, cfg.GatePermanentAfter)
	assert.Equal(t, 10, cfg.DevicePINCost)
	assert.Empty(t, cfg.RefreshSchedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CATALOG_TIMEOUT", "5s")
	t.Setenv("REFRESH_SCHEDULE", "@daily")
	t.Setenv("DEVICE_PIN", "2468")
	t.Setenv("GATE_MAX_ATTEMPTS", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, "@daily", cfg.RefreshSchedule)
	assert.Equal(t, "2468", cfg.DevicePIN)
	assert.Equal(t, 3, cfg.GateMaxAttempts)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "both pin forms",
			env:  map[string]string{"DEVICE_PIN": "1", "DEVICE_PIN_HASH": "$2a$10$x"},
		},
		{
			name: "zero attempts",
			env:  map[string]string{"GATE_MAX_ATTEMPTS": "0"},
		},
		{
			name: "pin cost out of range",
			env:  map[string]string{"DEVICE_PIN_COST": "2"},
		},
		{
			name: "bad duration",
			env:  map[string]string{"GATE_LOCKOUT": "soon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
