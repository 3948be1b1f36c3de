package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats 仪表盘统计
type DashboardStats struct {
	ReadingDate    *time.Time      `json:"reading_date,omitempty"`
	TotalSales     decimal.Decimal `json:"total_sales"` // currency
	FuelVolume     decimal.Decimal `json:"fuel_volume"` // liters
	Transactions   int64           `json:"transactions"`
	Variance       decimal.Decimal `json:"variance"`
	PetrolSales    decimal.Decimal `json:"petrol_sales"`
	DieselSales    decimal.Decimal `json:"diesel_sales"`
	PetrolVariance decimal.Decimal `json:"petrol_variance"`
	DieselVariance decimal.Decimal `json:"diesel_variance"`
	PumpSales      PumpSalesByFuel `json:"pump_sales"`
	TankLevels     TankFillPercent `json:"tank_levels"` // percent of operational capacity
	CurrentLevels  *TankLevels     `json:"current_levels,omitempty"`
	PetrolDip      decimal.Decimal `json:"petrol_dip_reading"`
	DieselDip      decimal.Decimal `json:"diesel_dip_reading"`
	Prices         *FuelPrices     `json:"prices,omitempty"`
}

// PumpSalesByFuel 各加油机销量
type PumpSalesByFuel struct {
	Petrol []decimal.Decimal `json:"petrol"`
	Diesel []decimal.Decimal `json:"diesel"`
}

// TankFillPercent 油罐百分比
type TankFillPercent struct {
	Petrol decimal.Decimal `json:"petrol"`
	Diesel decimal.Decimal `json:"diesel"`
}
