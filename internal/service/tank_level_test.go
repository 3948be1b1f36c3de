package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/pkg/ws"
)

func TestTankLevelServiceAdjust(t *testing.T) {
	ctx := context.Background()
	store := newMemLevels()
	store.levels[models.FuelDiesel] = dec("500")
	n := newNotifier()
	s := NewTankLevelService(zap.NewNop(), store, n)

	entry, err := s.Adjust(ctx, AdjustInput{TankType: "diesel", Delta: dec("-200"), User: "amos"})
	require.NoError(t, err)
	assert.Equal(t, models.LevelEventSale, entry.Event)
	assert.True(t, entry.NewLevel.Equal(dec("300")))

	// 不低于 0
	entry, err = s.Adjust(ctx, AdjustInput{TankType: "diesel", Delta: dec("-1000")})
	require.NoError(t, err)
	assert.True(t, entry.NewLevel.IsZero())

	entry, err = s.Adjust(ctx, AdjustInput{TankType: "petrol", Delta: dec("750.5")})
	require.NoError(t, err)
	assert.Equal(t, models.LevelEventRefill, entry.Event)

	levels, err := s.Current(ctx)
	require.NoError(t, err)
	assert.True(t, levels.Petrol.Equal(dec("750.5")))
	assert.True(t, levels.Diesel.IsZero())

	n.AssertCalled(t, "Publish", ws.TopicTankLevels, mock.Anything)
}

func TestTankLevelServiceAdjustValidation(t *testing.T) {
	s := NewTankLevelService(zap.NewNop(), newMemLevels(), newNotifier())
	ctx := context.Background()

	tests := []struct {
		name  string
		in    AdjustInput
		field string
	}{
		{"unknown tank", AdjustInput{TankType: "kerosene", Delta: dec("1")}, "tank_type"},
		{"zero delta", AdjustInput{TankType: "petrol"}, "delta"},
		{"dip event", AdjustInput{TankType: "petrol", Delta: dec("1"), Event: models.LevelEventDip}, "event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Adjust(ctx, tt.in)
			ve, ok := ledger.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Issues[0].Field)
		})
	}
}

func TestTankLevelServiceLogs(t *testing.T) {
	ctx := context.Background()
	store := newMemLevels()
	s := NewTankLevelService(zap.NewNop(), store, newNotifier())
	_, err := s.Adjust(ctx, AdjustInput{TankType: "petrol", Delta: dec("10")})
	require.NoError(t, err)
	_, err = s.Adjust(ctx, AdjustInput{TankType: "diesel", Delta: dec("10")})
	require.NoError(t, err)

	all, err := s.Logs(ctx, "", Page{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	petrol, err := s.Logs(ctx, models.FuelPetrol, Page{})
	require.NoError(t, err)
	assert.Len(t, petrol, 1)
}
