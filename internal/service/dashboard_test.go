package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
)

func dashboardReading() *models.Reading {
	r := models.NewReading(2)
	r.Date = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	r.PetrolPumps[0] = models.PumpReading{Opening: dec("100"), Closing: dec("400"), Sales: dec("300")}
	r.PetrolPumps[1] = models.PumpReading{Opening: dec("50"), Closing: dec("150"), Sales: dec("100")}
	r.DieselPumps[0] = models.PumpReading{Opening: dec("10"), Closing: dec("210"), Sales: dec("200")}
	r.DieselPumps[1] = models.PumpReading{Opening: dec("0"), Closing: dec("0"), Sales: dec("0")}
	r.PetrolTank = models.TankSummary{Closing: dec("12500"), DipReading: dec("12.5"), TankSales: dec("415")}
	r.DieselTank = models.TankSummary{Closing: dec("5000"), DipReading: dec("5"), TankSales: dec("195")}
	// 加油机销量 400 / 200，差异 15 / -5
	r.PetrolTank = ledger.Reconcile(r.PetrolPumps, r.PetrolTank)
	r.DieselTank = ledger.Reconcile(r.DieselPumps, r.DieselTank)
	return r
}

func TestBuildDashboard(t *testing.T) {
	prices := &models.FuelPrices{PetrolPrice: dec("29.92"), DieselPrice: dec("26.42")}
	stats := BuildDashboard(dashboardReading(), prices, nil, dec("25000"))

	assert.True(t, stats.PetrolSales.Equal(dec("400")))
	assert.True(t, stats.DieselSales.Equal(dec("200")))
	assert.True(t, stats.FuelVolume.Equal(dec("600")))
	// 400*29.92 + 200*26.42
	assert.True(t, stats.TotalSales.Equal(dec("17252")))
	assert.EqualValues(t, 30, stats.Transactions)
	assert.True(t, stats.Variance.Equal(dec("10")))
	// 12500 / 25000 L
	assert.True(t, stats.TankLevels.Petrol.Equal(dec("50")))
	assert.True(t, stats.TankLevels.Diesel.Equal(dec("20")))
	assert.True(t, stats.PetrolDip.Equal(dec("12.5")))
	require.Len(t, stats.PumpSales.Petrol, 2)
	assert.True(t, stats.PumpSales.Petrol[1].Equal(dec("100")))
	assert.Equal(t, "2026-03-02", models.DateKey(*stats.ReadingDate))
}

func TestBuildDashboardWithoutReading(t *testing.T) {
	levels := &models.TankLevels{Petrol: dec("100")}
	stats := BuildDashboard(nil, nil, levels, dec("25000"))

	assert.Nil(t, stats.ReadingDate)
	assert.Same(t, levels, stats.CurrentLevels)
	assert.NotNil(t, stats.Prices)
	assert.Empty(t, stats.PumpSales.Petrol)
	assert.Zero(t, stats.Transactions)
}

func TestDashboardServiceStats(t *testing.T) {
	ctx := context.Background()
	readings := newMemReadings(dashboardReading())
	levels := newMemLevels()
	levels.levels[models.FuelPetrol] = dec("12500")
	settings := &memSettings{prices: &models.FuelPrices{PetrolPrice: dec("10"), DieselPrice: dec("10")}}

	s := NewDashboardService(readings, levels, settings, ledger.DefaultConfig().OperationalCapacity)
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.TotalSales.Equal(dec("6000")))
	assert.True(t, stats.CurrentLevels.Petrol.Equal(dec("12500")))

	empty := NewDashboardService(newMemReadings(), newMemLevels(), &memSettings{}, dec("25000"))
	stats, err = empty.Stats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats.ReadingDate)
	assert.True(t, stats.Prices.PetrolPrice.IsZero())
}
