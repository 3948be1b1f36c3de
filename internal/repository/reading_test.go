package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Numzn/station-main/internal/models"
)

var readingColumnNames = []string{"id", "reading_date", "petrol_pumps", "diesel_pumps", "petrol_tank", "diesel_tank", "operator", "created_at", "updated_at"}

func sampleReading() *models.Reading {
	r := models.NewReading(1)
	r.Date = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r.PetrolPumps[0] = models.PumpReading{Opening: decimal.NewFromInt(1000), Closing: decimal.NewFromInt(1300), Sales: decimal.NewFromInt(300)}
	r.DieselPumps[0] = models.PumpReading{Opening: decimal.NewFromInt(500), Closing: decimal.NewFromInt(500)}
	r.PetrolTank = models.TankSummary{Closing: decimal.NewFromInt(12500), DipReading: decimal.RequireFromString("12.5")}
	r.Operator = "amos"
	return r
}

func TestReadingUpsertStoresPumpsAsJSON(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewReadingRepository(db)
	reading := sampleReading()
	created := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO readings .* ON CONFLICT \(reading_date\) DO UPDATE`).
		WithArgs(reading.Date, reading.PetrolPumps, reading.DieselPumps, reading.PetrolTank, reading.DieselTank, "amos").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), created, created))

	require.NoError(t, repo.Upsert(context.Background(), reading))
	assert.Equal(t, int64(7), reading.ID)
	assert.Equal(t, created, reading.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())

	// JSONB 列中数量为数字
	raw, err := json.Marshal(reading.PetrolPumps)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"opening":1000,"closing":1300,"sales":300}]`, string(raw))

	var back []models.PumpReading
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back[0].Sales.Equal(decimal.NewFromInt(300)))
}

func TestReadingGetByDate(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewReadingRepository(db)
	stored := sampleReading()
	missing := stored.Date.AddDate(0, 0, 1)

	mock.ExpectQuery(`FROM readings WHERE reading_date = \$1`).
		WithArgs(stored.Date).
		WillReturnRows(pgxmock.NewRows(readingColumnNames).AddRow(
			int64(7), stored.Date, stored.PetrolPumps, stored.DieselPumps, stored.PetrolTank, stored.DieselTank,
			"amos", stored.Date, stored.Date))
	mock.ExpectQuery(`FROM readings WHERE reading_date = \$1`).
		WithArgs(missing).
		WillReturnRows(pgxmock.NewRows(readingColumnNames))

	got, err := repo.GetByDate(context.Background(), stored.Date)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	require.Len(t, got.PetrolPumps, 1)
	assert.True(t, got.PetrolPumps[0].Closing.Equal(decimal.NewFromInt(1300)))
	assert.True(t, got.PetrolTank.DipReading.Equal(decimal.RequireFromString("12.5")))

	_, err = repo.GetByDate(context.Background(), missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadingListOpenRange(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewReadingRepository(db)

	mock.ExpectQuery(`\$1::date IS NULL OR reading_date >= \$1`).
		WithArgs((*time.Time)(nil), (*time.Time)(nil), 10, 0).
		WillReturnRows(pgxmock.NewRows(readingColumnNames))

	readings, err := repo.List(context.Background(), nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, readings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeDeletesInOneTransaction(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewPurgeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM readings`).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM tank_refills`).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM genset_readings`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM tank_level_logs`).WillReturnResult(pgxmock.NewResult("DELETE", 9))
	mock.ExpectCommit()

	result, err := repo.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &PurgeResult{Readings: 3, TankRefills: 2, TankLevelLogs: 9}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteMissing(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("u-404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "u-404")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
