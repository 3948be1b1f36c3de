package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Numzn/station-main/internal/models"
)

// RecordPumpClosing 录入加油机收班读数并计算销量。销量不设下限，负数原样保留。
func RecordPumpClosing(pump models.PumpReading, raw string) models.PumpReading {
	pump.Closing = ParseMeterInput(raw)
	pump.Sales = pump.Closing.Sub(pump.Opening)
	return pump
}

// RecordDipReading 录入量油尺读数，换算为升并计算油罐销量与差异
func RecordDipReading(tank models.TankSummary, raw string, convert DipConverter) models.TankSummary {
	meters := ParseMeterInput(raw)
	tank.MeterReading = meters
	tank.DipReading = meters
	tank.Closing = convert(meters)
	tank.TankSales = tank.Opening.Sub(tank.Closing)
	tank.Variance = tank.TankSales.Sub(tank.PumpSales)
	return tank
}

// SumSales 加油机销量合计
func SumSales(pumps []models.PumpReading) decimal.Decimal {
	total := decimal.Zero
	for _, p := range pumps {
		total = total.Add(p.Sales)
	}
	return total
}

// Reconcile 重新汇总加油机销量，差异与之一起更新
func Reconcile(pumps []models.PumpReading, tank models.TankSummary) models.TankSummary {
	tank.PumpSales = SumSales(pumps)
	tank.Variance = tank.TankSales.Sub(tank.PumpSales)
	return tank
}

// Rollover 结转到下一周期：收班读数变为开班读数，其余清零
func Rollover(pumps []models.PumpReading, tank models.TankSummary) ([]models.PumpReading, models.TankSummary) {
	next := make([]models.PumpReading, len(pumps))
	for i, p := range pumps {
		next[i] = models.PumpReading{Opening: p.Closing}
	}
	return next, models.TankSummary{Opening: tank.Closing}
}

// RolloverReading 由已保存的读数生成下一周期的草稿
func RolloverReading(saved *models.Reading) *models.Reading {
	next := &models.Reading{}
	next.PetrolPumps, next.PetrolTank = Rollover(saved.PetrolPumps, saved.PetrolTank)
	next.DieselPumps, next.DieselTank = Rollover(saved.DieselPumps, saved.DieselTank)
	return next
}

// ApplyPumpClosing 在读数上录入某个加油机的收班读数
func ApplyPumpClosing(r *models.Reading, fuel models.FuelType, index int, raw string) error {
	pumps := r.Pumps(fuel)
	if index < 0 || index >= len(pumps) {
		return fmt.Errorf("%w: %s pump %s (%s)", ErrUnknownPump, fuel.Title(), fuel.PumpLabel(index), pumpField(fuel, index))
	}
	pumps[index] = RecordPumpClosing(pumps[index], raw)
	tank := r.Tank(fuel)
	*tank = Reconcile(pumps, *tank)
	return nil
}

// ApplyDipReading 在读数上录入某个油罐的量油尺读数
func ApplyDipReading(r *models.Reading, fuel models.FuelType, raw string, cfg Config) {
	tank := r.Tank(fuel)
	*tank = RecordDipReading(*tank, raw, cfg.converter())
}

// Recompute 根据开班/收班读数和量油尺读数重新计算所有派生字段
func Recompute(r *models.Reading, cfg Config) {
	convert := cfg.converter()
	for _, fuel := range models.FuelTypes {
		pumps := r.Pumps(fuel)
		for i := range pumps {
			pumps[i].Sales = pumps[i].Closing.Sub(pumps[i].Opening)
		}
		tank := r.Tank(fuel)
		tank.DipReading = tank.MeterReading
		tank.Closing = convert(tank.MeterReading)
		tank.TankSales = tank.Opening.Sub(tank.Closing)
		*tank = Reconcile(pumps, *tank)
	}
}

// ValidateBeforeSave 保存前检查，所有收班读数都必须填写
func ValidateBeforeSave(r *models.Reading) error {
	var issues issueList
	for _, fuel := range models.FuelTypes {
		for i, p := range r.Pumps(fuel) {
			if p.Closing.IsZero() {
				issues.add(KindMissingField, pumpField(fuel, i), "%s Pump %s closing value is required", fuel.Title(), fuel.PumpLabel(i))
			}
		}
	}
	for _, fuel := range models.FuelTypes {
		if r.Tank(fuel).Closing.IsZero() {
			issues.add(KindMissingField, fmt.Sprintf("%s_tank.closing", fuel), "%s tank closing value is required", fuel.Title())
		}
	}
	return issues.err()
}

func pumpField(fuel models.FuelType, index int) string {
	return fmt.Sprintf("%s_pumps[%d].closing", fuel, index)
}
