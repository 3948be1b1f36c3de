package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// settings 文档键
const (
	SettingsFuelPrices    = "fuelPrices"
	SettingsSystemProfile = "systemProfile"
)

// FuelPrices 油价
type FuelPrices struct {
	PetrolPrice decimal.Decimal `json:"petrol_price"`
	DieselPrice decimal.Decimal `json:"diesel_price"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
}

// Price 获取单价
func (p *FuelPrices) Price(fuel FuelType) decimal.Decimal {
	if fuel == FuelDiesel {
		return p.DieselPrice
	}
	return p.PetrolPrice
}

// SystemProfile 站点信息
type SystemProfile struct {
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UserRole 用户角色
type UserRole string

const (
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

// User 站点用户
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
