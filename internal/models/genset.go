package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GensetStatus 发电机状态
type GensetStatus string

const (
	GensetRunning GensetStatus = "running"
	GensetStopped GensetStatus = "stopped"
)

// GensetReading 发电机加油记录
type GensetReading struct {
	ID                   string          `json:"id" db:"id"`
	RunningHours         decimal.Decimal `json:"running_hours" db:"running_hours"`
	HoursSinceLastRefuel decimal.Decimal `json:"hours_since_last_refuel" db:"hours_since_last_refuel"`
	FuelAdded            decimal.Decimal `json:"fuel_added" db:"fuel_added"` // liters
	FuelConsumptionRate  decimal.Decimal `json:"fuel_consumption_rate" db:"fuel_consumption_rate"`
	Operator             string          `json:"operator" db:"operator"`
	GensetStatus         GensetStatus    `json:"genset_status" db:"genset_status"`
	PowerOutageStart     *time.Time      `json:"power_outage_start,omitempty" db:"power_outage_start"`
	Timestamp            time.Time       `json:"timestamp" db:"recorded_at"`
}

// GensetSummary 发电机概览
type GensetSummary struct {
	LastReading        *GensetReading   `json:"last_reading"`
	NextRefuelAt       *decimal.Decimal `json:"next_refuel_at"`
	FuelAddedThisMonth decimal.Decimal  `json:"fuel_added_this_month"`
}
