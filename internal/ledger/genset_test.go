package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Numzn/station-main/internal/models"
)

func TestRecordGensetReadingFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec, err := RecordGensetReading(GensetInput{RunningHours: "1200.5", Operator: "amos"}, nil, DefaultConfig(), now)
	require.NoError(t, err)

	assertDec(t, "1200.5", rec.RunningHours)
	assert.True(t, rec.HoursSinceLastRefuel.IsZero())
	assert.True(t, rec.FuelConsumptionRate.IsZero())
	assertDec(t, "20", rec.FuelAdded)
	assert.Equal(t, models.GensetRunning, rec.GensetStatus)
	assert.Equal(t, now, rec.Timestamp)
}

func TestRecordGensetReadingInterval(t *testing.T) {
	last := &models.GensetReading{RunningHours: dec("100")}
	rec, err := RecordGensetReading(GensetInput{RunningHours: "108", Operator: "amos", Status: models.GensetStopped}, last, DefaultConfig(), time.Now())
	require.NoError(t, err)
	assertDec(t, "8", rec.HoursSinceLastRefuel)
	assertDec(t, "2.5", rec.FuelConsumptionRate)
	assert.Equal(t, models.GensetStopped, rec.GensetStatus)

	rec, err = RecordGensetReading(GensetInput{RunningHours: "103,5", Operator: "amos"}, last, DefaultConfig(), time.Now())
	require.NoError(t, err)
	assertDec(t, "3.5", rec.HoursSinceLastRefuel)
	assertDec(t, "5.7143", rec.FuelConsumptionRate)
}

func TestRecordGensetReadingMonotonic(t *testing.T) {
	last := &models.GensetReading{RunningHours: dec("100")}
	for _, raw := range []string{"100", "99.9", "0"} {
		rec, err := RecordGensetReading(GensetInput{RunningHours: raw, Operator: "amos"}, last, DefaultConfig(), time.Now())
		assert.Nil(t, rec)
		ve, ok := AsValidation(err)
		require.True(t, ok, raw)
		assert.True(t, ve.Has(KindInvalidTransition), raw)
	}
}

func TestRecordGensetReadingInvalidInput(t *testing.T) {
	for _, raw := range []string{"", "NaN", "abc"} {
		_, err := RecordGensetReading(GensetInput{RunningHours: raw, Operator: "amos"}, nil, DefaultConfig(), time.Now())
		ve, ok := AsValidation(err)
		require.True(t, ok, raw)
		assert.True(t, ve.Has(KindMissingField), raw)
	}

	_, err := RecordGensetReading(GensetInput{RunningHours: "5", Status: "idle"}, nil, DefaultConfig(), time.Now())
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Issues, 2)
}

func TestNextRefuelAt(t *testing.T) {
	assert.Nil(t, NextRefuelAt(nil, false))

	first := &models.GensetReading{RunningHours: dec("100")}
	assertDec(t, "106", *NextRefuelAt(first, false))

	short := &models.GensetReading{RunningHours: dec("105"), HoursSinceLastRefuel: dec("5")}
	assertDec(t, "112", *NextRefuelAt(short, true))

	long := &models.GensetReading{RunningHours: dec("106"), HoursSinceLastRefuel: dec("6")}
	assertDec(t, "112", *NextRefuelAt(long, true))
}
