package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TankLevelEvent 液位变化来源
type TankLevelEvent string

const (
	LevelEventRefill TankLevelEvent = "refill"
	LevelEventSale   TankLevelEvent = "sale"
	LevelEventDip    TankLevelEvent = "dip"
)

// TankLevels 当前液位 (tankLevels/current)
type TankLevels struct {
	Petrol      decimal.Decimal `json:"petrol"`
	Diesel      decimal.Decimal `json:"diesel"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
}

// Level 获取指定油罐液位
func (l *TankLevels) Level(fuel FuelType) decimal.Decimal {
	if fuel == FuelDiesel {
		return l.Diesel
	}
	return l.Petrol
}

// LevelChange 液位变化原因，写入液位日志
type LevelChange struct {
	Event TankLevelEvent
	RefID string
	User  string
}

// TankLevelLog 液位变化日志
type TankLevelLog struct {
	ID         string          `json:"id" db:"id"`
	TankType   FuelType        `json:"tank_type" db:"tank_type"`
	Delta      decimal.Decimal `json:"delta" db:"delta"`
	NewLevel   decimal.Decimal `json:"new_level" db:"new_level"`
	Event      TankLevelEvent  `json:"event" db:"event"`
	RefID      string          `json:"ref_id,omitempty" db:"ref_id"`
	User       string          `json:"user,omitempty" db:"user_name"`
	RecordedAt time.Time       `json:"recorded_at" db:"recorded_at"`
}
