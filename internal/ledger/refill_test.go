package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Numzn/station-main/internal/models"
)

func TestRefillStatusOf(t *testing.T) {
	assert.Equal(t, models.RefillExact, RefillStatusOf(dec("0")))
	assert.Equal(t, models.RefillOver, RefillStatusOf(dec("0.001")))
	assert.Equal(t, models.RefillShort, RefillStatusOf(dec("-0.001")))
}

func TestDeriveRefill(t *testing.T) {
	r := &models.TankRefill{InitialDip: dec("5000"), FinalDip: dec("9900"), ExpectedDelivery: dec("5000")}
	DeriveRefill(r)
	assertDec(t, "4900", r.ActualDelivered)
	assertDec(t, "-100", r.Variance)
	assertDec(t, "-2", r.VariancePercent)
	assert.Equal(t, models.RefillShort, r.Status)

	r = &models.TankRefill{InitialDip: dec("1"), FinalDip: dec("5")}
	DeriveRefill(r)
	assert.True(t, r.VariancePercent.IsZero())
	assert.Equal(t, models.RefillOver, r.Status)
}

func TestCheckPrep(t *testing.T) {
	err := CheckPrep(&models.TankRefill{})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Issues, 4)

	err = CheckPrep(&models.TankRefill{
		TankType: models.FuelPetrol, InvoiceNumber: "INV-1",
		InitialDip: dec("120"), ExpectedDelivery: dec("5000"),
	})
	assert.NoError(t, err)

	err = CheckPrep(&models.TankRefill{
		TankType: models.FuelPetrol, InvoiceNumber: "INV-1",
		InitialDip: dec("-1"), ExpectedDelivery: dec("5000"),
	})
	ve, ok = AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "initial_dip", ve.Issues[0].Field)
}

func TestCheckOffload(t *testing.T) {
	assert.Error(t, CheckOffload(&models.TankRefill{}))
	assert.NoError(t, CheckOffload(&models.TankRefill{FinalDip: dec("0.5")}))
}

func TestValidateRefillMissingFields(t *testing.T) {
	warnings, err := ValidateRefill(&models.TankRefill{}, DefaultConfig())
	assert.Empty(t, warnings)
	ve, ok := AsValidation(err)
	require.True(t, ok)

	fields := make([]string, 0, len(ve.Issues))
	for _, issue := range ve.Issues {
		assert.Equal(t, KindMissingField, issue.Kind)
		fields = append(fields, issue.Field)
	}
	assert.Equal(t, []string{"tank_type", "initial_dip", "expected_delivery", "final_dip", "invoice_number", "signature"}, fields)
}

func TestValidateRefillCapacity(t *testing.T) {
	r := &models.TankRefill{
		TankType: models.FuelDiesel, InvoiceNumber: "INV-7", Signature: true,
		InitialDip: dec("25000"), ExpectedDelivery: dec("5185"), FinalDip: dec("30185.6"),
	}
	_, err := ValidateRefill(r, DefaultConfig())
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has(KindCapacityExceeded))
	assert.Equal(t, "Final dip exceeds tank capacity (30185.5L)", ve.Issues[0].Detail)

	r.FinalDip = dec("30185.5")
	_, err = ValidateRefill(r, DefaultConfig())
	assert.NoError(t, err)
}

func TestValidateRefillLargeVarianceIsWarning(t *testing.T) {
	r := &models.TankRefill{
		TankType: models.FuelPetrol, InvoiceNumber: "INV-42", Signature: true,
		InitialDip: dec("120"), FinalDip: dec("150"), ExpectedDelivery: dec("5000"),
	}
	DeriveRefill(r)
	assertDec(t, "30", r.ActualDelivered)

	warnings, err := ValidateRefill(r, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, KindLargeVariance, warnings[0].Kind)
}

func TestValidateRefillVarianceThreshold(t *testing.T) {
	r := &models.TankRefill{
		TankType: models.FuelPetrol, InvoiceNumber: "INV-1", Signature: true,
		InitialDip: dec("1000"), ExpectedDelivery: dec("1000"), FinalDip: dec("2050"),
	}
	warnings, err := ValidateRefill(r, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, warnings, "exactly five percent is not large")

	r.FinalDip = dec("2051")
	warnings, _ = ValidateRefill(r, DefaultConfig())
	assert.Len(t, warnings, 1)
}
