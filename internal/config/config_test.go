package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Numzn/station-main/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, 4, cfg.PumpsPerTank)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)

	lc, err := cfg.Ledger()
	require.NoError(t, err)
	assert.True(t, lc.TankMaxLiters[models.FuelPetrol].Equal(decimal.RequireFromString("30645.3")))
	assert.True(t, lc.DipToLiters(decimal.RequireFromString("13.7")).Equal(decimal.NewFromInt(13700)))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PUMPS_PER_TANK", "6")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local,http://b.local")
	t.Setenv("DIP_LITERS_PER_METER", "950")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 6, cfg.PumpsPerTank)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)

	lc, err := cfg.Ledger()
	require.NoError(t, err)
	assert.True(t, lc.DipToLiters(decimal.NewFromInt(2)).Equal(decimal.NewFromInt(1900)))
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("GENSET_FUEL_LITERS", "twenty")
	_, err := Load()
	assert.ErrorContains(t, err, "GENSET_FUEL_LITERS")

	t.Setenv("GENSET_FUEL_LITERS", "20")
	t.Setenv("PUMPS_PER_TANK", "0")
	_, err = Load()
	assert.Error(t, err)
}
