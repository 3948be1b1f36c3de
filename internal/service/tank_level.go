package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/pkg/ws"
)

// AdjustInput 手动调整液位
type AdjustInput struct {
	TankType string                `json:"tank_type"`
	Delta    decimal.Decimal       `json:"delta"`
	Event    models.TankLevelEvent `json:"event"`
	RefID    string                `json:"ref_id"`
	User     string                `json:"user"`
}

// TankLevelService 油罐液位服务
type TankLevelService struct {
	logger   *zap.Logger
	store    TankLevelStore
	notifier Notifier
}

// NewTankLevelService 创建液位服务
func NewTankLevelService(logger *zap.Logger, store TankLevelStore, notifier Notifier) *TankLevelService {
	return &TankLevelService{logger: logger, store: store, notifier: notifier}
}

// Current 当前液位
func (s *TankLevelService) Current(ctx context.Context) (*models.TankLevels, error) {
	levels, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tank levels: %w", err)
	}
	return levels, nil
}

// Adjust 按增量调整液位，结果不低于 0
func (s *TankLevelService) Adjust(ctx context.Context, in AdjustInput) (*models.TankLevelLog, error) {
	fuel, err := models.ParseFuelType(in.TankType)
	if err != nil {
		return nil, ledger.Fail(ledger.KindMissingField, "tank_type", "Tank type must be petrol or diesel")
	}
	if in.Delta.IsZero() {
		return nil, ledger.Fail(ledger.KindMissingField, "delta", "Delta is required")
	}

	event := in.Event
	switch event {
	case models.LevelEventSale, models.LevelEventRefill:
	case "":
		event = models.LevelEventRefill
		if in.Delta.IsNegative() {
			event = models.LevelEventSale
		}
	default:
		return nil, ledger.Fail(ledger.KindMissingField, "event", "Event must be sale or refill")
	}

	entry, err := s.store.ApplyDelta(ctx, fuel, in.Delta, models.LevelChange{Event: event, RefID: in.RefID, User: in.User})
	if err != nil {
		return nil, fmt.Errorf("adjust tank level: %w", err)
	}

	s.logger.Info("Tank level adjusted",
		zap.String("tank", string(fuel)),
		zap.String("delta", entry.Delta.String()),
		zap.String("new_level", entry.NewLevel.String()),
	)

	if levels, err := s.store.Get(ctx); err == nil {
		s.notifier.Publish(ws.TopicTankLevels, levels)
	}
	return entry, nil
}

// Logs 液位变化日志
func (s *TankLevelService) Logs(ctx context.Context, fuel models.FuelType, page Page) ([]*models.TankLevelLog, error) {
	return s.store.ListLogs(ctx, fuel, page.Limit(), page.Offset())
}
