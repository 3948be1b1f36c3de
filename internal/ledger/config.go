package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Numzn/station-main/internal/models"
)

// DipConverter 量油尺读数 (米) 转换为体积 (升)
type DipConverter func(meters decimal.Decimal) decimal.Decimal

// LinearDip 线性换算。只是占位公式，真实油罐需要标定的容积表。
func LinearDip(litersPerMeter decimal.Decimal) DipConverter {
	return func(meters decimal.Decimal) decimal.Decimal {
		return meters.Mul(litersPerMeter)
	}
}

// Config 计算参数，由调用方显式传入
type Config struct {
	DipToLiters          DipConverter
	TankMaxLiters        map[models.FuelType]decimal.Decimal
	OperationalCapacity  decimal.Decimal // fallback when a tank has no rated maximum
	LargeVariancePercent decimal.Decimal
	GensetFuelLiters     decimal.Decimal
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		DipToLiters: LinearDip(decimal.NewFromInt(1000)),
		TankMaxLiters: map[models.FuelType]decimal.Decimal{
			models.FuelPetrol: decimal.RequireFromString("30645.3"),
			models.FuelDiesel: decimal.RequireFromString("30185.5"),
		},
		OperationalCapacity:  decimal.NewFromInt(25000),
		LargeVariancePercent: decimal.NewFromInt(5),
		GensetFuelLiters:     decimal.NewFromInt(20),
	}
}

// MaxVolume 油罐最大容积
func (c Config) MaxVolume(fuel models.FuelType) decimal.Decimal {
	if max, ok := c.TankMaxLiters[fuel]; ok && max.IsPositive() {
		return max
	}
	return c.OperationalCapacity
}

func (c Config) converter() DipConverter {
	if c.DipToLiters == nil {
		return DefaultConfig().DipToLiters
	}
	return c.DipToLiters
}
