package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PumpReading 单个加油机一个周期的表读数
type PumpReading struct {
	Opening decimal.Decimal `json:"opening"`
	Closing decimal.Decimal `json:"closing"`
	Sales   decimal.Decimal `json:"sales"` // closing - opening
}

// TankSummary 油罐一个周期的汇总
type TankSummary struct {
	Opening      decimal.Decimal `json:"opening"`       // liters, previous closing
	MeterReading decimal.Decimal `json:"meter_reading"` // dip stick, meters
	DipReading   decimal.Decimal `json:"dip_reading"`   // same value, kept for older clients
	Closing      decimal.Decimal `json:"closing"`       // liters
	TankSales    decimal.Decimal `json:"tank_sales"`
	PumpSales    decimal.Decimal `json:"pump_sales"`
	Variance     decimal.Decimal `json:"variance"` // tank_sales - pump_sales
}

// Reading 某一天的读数记录 (readings/<date>)
type Reading struct {
	ID          int64         `json:"id,omitempty" db:"id"`
	Date        time.Time     `json:"date" db:"reading_date"`
	PetrolPumps []PumpReading `json:"petrol_pumps" db:"petrol_pumps"`
	DieselPumps []PumpReading `json:"diesel_pumps" db:"diesel_pumps"`
	PetrolTank  TankSummary   `json:"petrol_tank" db:"petrol_tank"`
	DieselTank  TankSummary   `json:"diesel_tank" db:"diesel_tank"`
	Operator    string        `json:"operator,omitempty" db:"operator"`
	CreatedAt   time.Time     `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty" db:"updated_at"`
}

// NewReading 创建空的读数周期
func NewReading(pumpsPerTank int) *Reading {
	return &Reading{
		PetrolPumps: make([]PumpReading, pumpsPerTank),
		DieselPumps: make([]PumpReading, pumpsPerTank),
	}
}

// Pumps 获取指定燃料的加油机读数
func (r *Reading) Pumps(fuel FuelType) []PumpReading {
	if fuel == FuelDiesel {
		return r.DieselPumps
	}
	return r.PetrolPumps
}

// Tank 获取指定燃料的油罐汇总
func (r *Reading) Tank(fuel FuelType) *TankSummary {
	if fuel == FuelDiesel {
		return &r.DieselTank
	}
	return &r.PetrolTank
}

// Clone 深拷贝
func (r *Reading) Clone() *Reading {
	c := *r
	c.PetrolPumps = append([]PumpReading(nil), r.PetrolPumps...)
	c.DieselPumps = append([]PumpReading(nil), r.DieselPumps...)
	return &c
}

// DateKey 读数文档键 (每天一条)
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
