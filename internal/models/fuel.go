package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// 数量以 JSON 数字输出，而不是字符串
	decimal.MarshalJSONWithoutQuotes = true
}

// FuelType 燃料类型
type FuelType string

const (
	FuelPetrol FuelType = "petrol"
	FuelDiesel FuelType = "diesel"
)

// FuelTypes 站内所有油罐，按显示顺序
var FuelTypes = []FuelType{FuelPetrol, FuelDiesel}

// ParseFuelType 解析燃料类型
func ParseFuelType(s string) (FuelType, error) {
	switch FuelType(s) {
	case FuelPetrol, FuelDiesel:
		return FuelType(s), nil
	}
	return "", fmt.Errorf("unknown fuel type %q", s)
}

// PumpLabel 加油机编号 (汽油 P1..Pn，柴油 D1..Dn)
func (f FuelType) PumpLabel(index int) string {
	prefix := "P"
	if f == FuelDiesel {
		prefix = "D"
	}
	return fmt.Sprintf("%s%d", prefix, index+1)
}

// Title 显示名称
func (f FuelType) Title() string {
	switch f {
	case FuelPetrol:
		return "Petrol"
	case FuelDiesel:
		return "Diesel"
	}
	return string(f)
}
