package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefillStatus 卸油结果
type RefillStatus string

const (
	RefillExact RefillStatus = "Exact"
	RefillOver  RefillStatus = "Over"
	RefillShort RefillStatus = "Short"
)

// TankRefill 油罐卸油记录
type TankRefill struct {
	ID               string          `json:"id" db:"id"`
	TankType         FuelType        `json:"tank_type" db:"tank_type"`
	InvoiceNumber    string          `json:"invoice_number" db:"invoice_number"`
	InitialDip       decimal.Decimal `json:"initial_dip" db:"initial_dip"` // liters
	ExpectedDelivery decimal.Decimal `json:"expected_delivery" db:"expected_delivery"`
	FinalDip         decimal.Decimal `json:"final_dip" db:"final_dip"`
	ActualDelivered  decimal.Decimal `json:"actual_delivered" db:"actual_delivered"`
	Variance         decimal.Decimal `json:"variance" db:"variance"`
	VariancePercent  decimal.Decimal `json:"variance_percent" db:"variance_percent"`
	Status           RefillStatus    `json:"status" db:"status"`
	Operator         string          `json:"operator" db:"operator"`
	Signature        bool            `json:"signature" db:"signature"`
	Notes            string          `json:"notes,omitempty" db:"notes"`
	PhotoURL         string          `json:"photo_url,omitempty" db:"photo_url"`
	Timestamp        time.Time       `json:"timestamp" db:"recorded_at"`
}
