package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Numzn/station-main/internal/models"
)

// 估算交易笔数时每笔平均升数
var litersPerTransaction = decimal.NewFromInt(20)

// DashboardService 仪表盘统计
type DashboardService struct {
	readings ReadingStore
	levels   TankLevelStore
	settings SettingsStore
	capacity decimal.Decimal
}

// NewDashboardService 创建仪表盘服务，capacity 为计算液位百分比的油罐容量
func NewDashboardService(readings ReadingStore, levels TankLevelStore, settings SettingsStore, capacity decimal.Decimal) *DashboardService {
	return &DashboardService{readings: readings, levels: levels, settings: settings, capacity: capacity}
}

// Stats 并发加载油价、最新读数和液位后汇总
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var (
		prices  *models.FuelPrices
		reading *models.Reading
		levels  *models.TankLevels
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.settings.GetFuelPrices(gctx)
		if isNotFound(err) {
			prices = &models.FuelPrices{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("get fuel prices: %w", err)
		}
		prices = p
		return nil
	})
	g.Go(func() error {
		r, err := s.readings.Latest(gctx)
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get latest reading: %w", err)
		}
		reading = r
		return nil
	})
	g.Go(func() error {
		l, err := s.levels.Get(gctx)
		if err != nil {
			return fmt.Errorf("get tank levels: %w", err)
		}
		levels = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildDashboard(reading, prices, levels, s.capacity), nil
}

// BuildDashboard 由最新读数计算仪表盘数据，reading 为空时只返回液位和油价。
// 液位百分比 = 收班存量 / capacity * 100，capacity 取 TANK_OPERATIONAL_CAPACITY (默认 25000 L)，
// 不是旧版固定的 10000 L，所以同样的存量显示的百分比更低。
func BuildDashboard(reading *models.Reading, prices *models.FuelPrices, levels *models.TankLevels, capacity decimal.Decimal) *models.DashboardStats {
	if prices == nil {
		prices = &models.FuelPrices{}
	}
	stats := &models.DashboardStats{
		CurrentLevels: levels,
		Prices:        prices,
		PumpSales:     models.PumpSalesByFuel{Petrol: []decimal.Decimal{}, Diesel: []decimal.Decimal{}},
	}
	if reading == nil {
		return stats
	}

	date := reading.Date
	stats.ReadingDate = &date

	for _, fuel := range models.FuelTypes {
		pumps := reading.Pumps(fuel)
		perPump := make([]decimal.Decimal, len(pumps))
		volume := decimal.Zero
		for i, p := range pumps {
			perPump[i] = p.Sales
			volume = volume.Add(p.Sales)
		}
		tank := reading.Tank(fuel)
		fill := decimal.Zero
		if capacity.IsPositive() {
			fill = tank.Closing.Div(capacity).Mul(decimal.NewFromInt(100)).Round(2)
		}

		switch fuel {
		case models.FuelPetrol:
			stats.PumpSales.Petrol = perPump
			stats.PetrolSales = volume
			stats.PetrolVariance = tank.Variance
			stats.PetrolDip = tank.DipReading
			stats.TankLevels.Petrol = fill
		case models.FuelDiesel:
			stats.PumpSales.Diesel = perPump
			stats.DieselSales = volume
			stats.DieselVariance = tank.Variance
			stats.DieselDip = tank.DipReading
			stats.TankLevels.Diesel = fill
		}
		stats.FuelVolume = stats.FuelVolume.Add(volume)
		stats.TotalSales = stats.TotalSales.Add(volume.Mul(prices.Price(fuel)))
		stats.Variance = stats.Variance.Add(tank.Variance)
	}

	stats.TotalSales = stats.TotalSales.Round(2)
	stats.Transactions = stats.FuelVolume.Div(litersPerTransaction).Round(0).IntPart()
	return stats
}
