package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Numzn/station-main/internal/models"
)

// decArg 按数值比较 decimal 参数
type decArg string

func (d decArg) Match(v interface{}) bool {
	got, ok := v.(decimal.Decimal)
	return ok && got.Equal(decimal.RequireFromString(string(d)))
}

func newMockDB(t *testing.T) (pgxmock.PgxPoolIface, *DB) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewWithPool(mock)
}

func TestTankLevelApplyDeltaClampsAtZero(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewTankLevelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT level FROM tank_levels WHERE tank_type = \$1 FOR UPDATE`).
		WithArgs(models.FuelDiesel).
		WillReturnRows(pgxmock.NewRows([]string{"level"}).AddRow(decimal.NewFromInt(100)))
	mock.ExpectExec(`UPDATE tank_levels SET level = \$2`).
		WithArgs(models.FuelDiesel, decArg("0"), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO tank_level_logs`).
		WithArgs(pgxmock.AnyArg(), models.FuelDiesel, decArg("-100"), decArg("0"),
			models.LevelEventSale, "reading-7", "amos", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	entry, err := repo.ApplyDelta(context.Background(), models.FuelDiesel, decimal.NewFromInt(-250),
		models.LevelChange{Event: models.LevelEventSale, RefID: "reading-7", User: "amos"})
	require.NoError(t, err)
	assert.True(t, entry.NewLevel.IsZero())
	assert.True(t, entry.Delta.Equal(decimal.NewFromInt(-100)))
	assert.Equal(t, models.FuelDiesel, entry.TankType)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTankLevelSetRecordsDifference(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewTankLevelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT level FROM tank_levels`).
		WithArgs(models.FuelPetrol).
		WillReturnRows(pgxmock.NewRows([]string{"level"}).AddRow(decimal.NewFromInt(4000)))
	mock.ExpectExec(`UPDATE tank_levels`).
		WithArgs(models.FuelPetrol, decArg("12500"), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO tank_level_logs`).
		WithArgs(pgxmock.AnyArg(), models.FuelPetrol, decArg("8500"), decArg("12500"),
			models.LevelEventRefill, "refill-1", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	entry, err := repo.Set(context.Background(), models.FuelPetrol, decimal.NewFromInt(12500),
		models.LevelChange{Event: models.LevelEventRefill, RefID: "refill-1"})
	require.NoError(t, err)
	assert.True(t, entry.Delta.Equal(decimal.NewFromInt(8500)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTankLevelLogFailureRollsBack(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewTankLevelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT level FROM tank_levels`).
		WithArgs(models.FuelPetrol).
		WillReturnRows(pgxmock.NewRows([]string{"level"}).AddRow(decimal.NewFromInt(500)))
	mock.ExpectExec(`UPDATE tank_levels`).
		WithArgs(models.FuelPetrol, decArg("700"), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO tank_level_logs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	entry, err := repo.ApplyDelta(context.Background(), models.FuelPetrol, decimal.NewFromInt(200),
		models.LevelChange{Event: models.LevelEventRefill})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert tank level log")
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTankLevelMissingRow(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewTankLevelRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT level FROM tank_levels`).
		WithArgs(models.FuelDiesel).
		WillReturnRows(pgxmock.NewRows([]string{"level"}))
	mock.ExpectRollback()

	_, err := repo.ApplyDelta(context.Background(), models.FuelDiesel, decimal.NewFromInt(10),
		models.LevelChange{Event: models.LevelEventRefill})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTankLevelListLogsFilter(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewTankLevelRepository(db)
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	columns := []string{"id", "tank_type", "delta", "new_level", "event", "ref_id", "user_name", "recorded_at"}

	// 空字符串表示全部油罐
	mock.ExpectQuery(`WHERE \(\$1 = '' OR tank_type = \$1\)`).
		WithArgs("", 20, 0).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("l1", models.FuelPetrol, decimal.NewFromInt(-300), decimal.NewFromInt(9700), models.LevelEventSale, "", "", at).
			AddRow("l2", models.FuelDiesel, decimal.NewFromInt(5000), decimal.NewFromInt(8000), models.LevelEventRefill, "r1", "amos", at))
	mock.ExpectQuery(`FROM tank_level_logs`).
		WithArgs("diesel", 10, 10).
		WillReturnRows(pgxmock.NewRows(columns))

	logs, err := repo.ListLogs(context.Background(), "", 20, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.FuelDiesel, logs[1].TankType)
	assert.True(t, logs[1].NewLevel.Equal(decimal.NewFromInt(8000)))
	assert.Equal(t, "amos", logs[1].User)

	logs, err = repo.ListLogs(context.Background(), models.FuelDiesel, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
