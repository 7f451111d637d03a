package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "cli", cfg.Mode)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "parking-facility", cfg.OTelServiceName)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.Empty(t, cfg.InventoryPath)
	assert.Equal(t, 2, cfg.SmallSlots)
	assert.Equal(t, 2, cfg.MediumSlots)
	assert.Equal(t, 2, cfg.LargeSlots)
	assert.Equal(t, parking.DefaultFareTable(), cfg.FareTable())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_MODE", "server")
	t.Setenv("FACILITY_SMALL_SLOTS", "4")
	t.Setenv("FACILITY_LARGE_SLOTS", "0")
	t.Setenv("FARE_MEDIUM", "25")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, 4, cfg.SmallSlots)
	assert.Equal(t, 0, cfg.LargeSlots)
	assert.Equal(t, 25, cfg.FareTable()[parking.VehicleMedium])

	inventory, err := cfg.Inventory()
	require.NoError(t, err)
	assert.Len(t, inventory, 6)
}

func TestInvalidNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("FACILITY_MEDIUM_SLOTS", "many")
	t.Setenv("FARE_LARGE", "free")

	cfg := Load()

	assert.Equal(t, 2, cfg.MediumSlots)
	assert.Equal(t, 30, cfg.LargeFare)
}

func TestInventoryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lot.yml")
	require.NoError(t, os.WriteFile(path, []byte("slots:\n  - id: 9\n    class: large\n"), 0o600))
	t.Setenv("FACILITY_INVENTORY", path)

	inventory, err := Load().Inventory()
	require.NoError(t, err)
	assert.Equal(t, []parking.SlotSpec{{ID: 9, Class: parking.SlotLarge}}, inventory)
}
