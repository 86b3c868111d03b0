package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionsimulator/internal/engines/simulation"
	"optionsimulator/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, models.DefaultContractParams(), cfg.Contract)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.Interval)
	assert.Equal(t, 100, cfg.Simulation.MaxFrames)
	assert.Equal(t, "horizon", cfg.Simulation.Increment)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ASSET_PRICE", "100")
	t.Setenv("STRIKE_PRICE", "105.5")
	t.Setenv("EXPIRATION_DATE", "2024-06-21")
	t.Setenv("FRAME_INTERVAL", "250ms")
	t.Setenv("MAX_FRAMES", "40")
	t.Setenv("SEED", "7")
	t.Setenv("VOLATILITY", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 100.0, cfg.Contract.AssetPrice)
	assert.Equal(t, 105.5, cfg.Contract.StrikePrice)
	assert.Equal(t, models.NewDate(2024, 6, 21), cfg.Contract.ExpirationDate)
	assert.Equal(t, 0.4, cfg.Contract.Volatility)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.Interval)
	assert.Equal(t, 40, cfg.Simulation.MaxFrames)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
}

func TestLoadContractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.yaml")
	content := []byte("asset_price: 120\nstrike_price: 110\nexpiration_date: 2024-03-15\nrisk_free_rate: 0.05\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	params, err := LoadContractFile(path)
	require.NoError(t, err)

	assert.Equal(t, 120.0, params.AssetPrice)
	assert.Equal(t, 110.0, params.StrikePrice)
	assert.Equal(t, models.NewDate(2024, 3, 15), params.ExpirationDate)
	assert.Equal(t, 0.05, params.RiskFreeRate)
	assert.Equal(t, 0.4, params.Volatility)
	assert.Equal(t, 0.2, params.Drift)

	t.Setenv("CONTRACT_FILE", path)
	t.Setenv("DRIFT", "0.3")
	cfg := Load()
	assert.Equal(t, 120.0, cfg.Contract.AssetPrice)
	assert.Equal(t, 0.3, cfg.Contract.Drift)
}

func TestLoadContractFileErrors(t *testing.T) {
	_, err := LoadContractFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("expiration_date: 17/02/2023\n"), 0o600))
	_, err = LoadContractFile(path)
	assert.Error(t, err)
}

func TestStartOptions(t *testing.T) {
	t.Setenv("INCREMENT_MODEL", "volatility")
	t.Setenv("VALUATION_DATE", "2023-01-20")
	t.Setenv("SEED", "42")

	opts, err := Load().StartOptions()
	require.NoError(t, err)
	assert.Equal(t, simulation.IncrementVolatility, opts.Increment)
	assert.Equal(t, models.NewDate(2023, 1, 20), opts.ValuationDate)
	assert.Equal(t, uint64(42), opts.Seed)
	assert.Equal(t, 100, opts.MaxFrames)

	t.Setenv("INCREMENT_MODEL", "brownian")
	_, err = Load().StartOptions()
	assert.Error(t, err)

	t.Setenv("INCREMENT_MODEL", "")
	t.Setenv("VALUATION_DATE", "20/01/2023")
	_, err = Load().StartOptions()
	assert.Error(t, err)
}
