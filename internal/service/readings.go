package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/pkg/ws"
)

// SaveReadingResult 保存结果
type SaveReadingResult struct {
	Reading  *models.Reading `json:"reading"`
	Draft    *models.Reading `json:"draft"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ReadingService 日读数服务，持有当前周期草稿
type ReadingService struct {
	logger       *zap.Logger
	cfg          ledger.Config
	pumpsPerTank int
	readings     ReadingStore
	levels       TankLevelStore
	notifier     Notifier
	now          func() time.Time

	mu    sync.Mutex
	draft *models.Reading
}

// NewReadingService 创建读数服务
func NewReadingService(
	logger *zap.Logger,
	cfg ledger.Config,
	pumpsPerTank int,
	readings ReadingStore,
	levels TankLevelStore,
	notifier Notifier,
) *ReadingService {
	return &ReadingService{
		logger:       logger,
		cfg:          cfg,
		pumpsPerTank: pumpsPerTank,
		readings:     readings,
		levels:       levels,
		notifier:     notifier,
		now:          time.Now,
		draft:        models.NewReading(pumpsPerTank),
	}
}

// Load 用最近一次保存的读数作为草稿的开班读数
func (s *ReadingService) Load(ctx context.Context) error {
	latest, err := s.readings.Latest(ctx)
	if isNotFound(err) {
		s.logger.Info("No saved readings, starting with an empty draft")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load latest reading: %w", err)
	}

	s.mu.Lock()
	s.draft = s.fit(ledger.RolloverReading(latest))
	s.mu.Unlock()

	s.logger.Info("Draft seeded from saved reading", zap.String("date", models.DateKey(latest.Date)))
	return nil
}

// Reset 清空草稿 (数据清除后)
func (s *ReadingService) Reset() {
	s.mu.Lock()
	s.draft = models.NewReading(s.pumpsPerTank)
	draft := s.draft.Clone()
	s.mu.Unlock()
	s.notifier.Publish(ws.TopicReadingsDraft, draft)
}

// Draft 获取当前草稿
func (s *ReadingService) Draft() *models.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// SetPumpClosing 录入加油机收班读数
func (s *ReadingService) SetPumpClosing(fuel models.FuelType, index int, raw string) (*models.Reading, error) {
	s.mu.Lock()
	if err := ledger.ApplyPumpClosing(s.draft, fuel, index, raw); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	draft := s.draft.Clone()
	s.mu.Unlock()

	s.notifier.Publish(ws.TopicReadingsDraft, draft)
	return draft, nil
}

// SetDip 录入量油尺读数
func (s *ReadingService) SetDip(fuel models.FuelType, raw string) *models.Reading {
	s.mu.Lock()
	ledger.ApplyDipReading(s.draft, fuel, raw, s.cfg)
	draft := s.draft.Clone()
	s.mu.Unlock()

	s.notifier.Publish(ws.TopicReadingsDraft, draft)
	return draft
}

// Preview 无状态计算一份完整表单
func (s *ReadingService) Preview(input *models.Reading) *models.Reading {
	r := s.fit(input.Clone())
	ledger.Recompute(r, s.cfg)
	return r
}

// Save 校验并保存草稿，成功后结转到下一周期。date 为空时使用今天。
func (s *ReadingService) Save(ctx context.Context, operator string, date *time.Time) (*SaveReadingResult, error) {
	s.mu.Lock()
	if err := ledger.ValidateBeforeSave(s.draft); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	reading := s.draft.Clone()
	reading.Operator = operator
	reading.Date = dateOnly(s.now())
	if date != nil {
		reading.Date = dateOnly(*date)
	}

	if err := s.readings.Upsert(ctx, reading); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("save reading: %w", err)
	}

	// 使用刚保存的值结转，不重新读取
	s.draft = s.fit(ledger.RolloverReading(reading))
	draft := s.draft.Clone()
	s.mu.Unlock()

	s.logger.Info("Reading saved",
		zap.String("date", models.DateKey(reading.Date)),
		zap.String("operator", operator),
		zap.String("petrol_variance", reading.PetrolTank.Variance.String()),
		zap.String("diesel_variance", reading.DieselTank.Variance.String()),
	)

	result := &SaveReadingResult{Reading: reading, Draft: draft}
	result.Warnings = s.syncLevels(ctx, reading)

	s.notifier.Publish(ws.TopicReadings, reading)
	s.notifier.Publish(ws.TopicReadingsDraft, draft)
	return result, nil
}

// syncLevels 用量油结果更新当前液位，失败不影响已保存的读数
func (s *ReadingService) syncLevels(ctx context.Context, reading *models.Reading) []string {
	var warnings []string
	updated := false
	for _, fuel := range models.FuelTypes {
		change := models.LevelChange{Event: models.LevelEventDip, RefID: models.DateKey(reading.Date), User: reading.Operator}
		if _, err := s.levels.Set(ctx, fuel, reading.Tank(fuel).Closing, change); err != nil {
			s.logger.Warn("Failed to update tank level from dip", zap.String("tank", string(fuel)), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("%s tank level was not updated, please adjust it manually", fuel.Title()))
			continue
		}
		updated = true
	}

	if updated {
		if levels, err := s.levels.Get(ctx); err == nil {
			s.notifier.Publish(ws.TopicTankLevels, levels)
		}
	}
	return warnings
}

// Latest 获取最近保存的读数
func (s *ReadingService) Latest(ctx context.Context) (*models.Reading, error) {
	return s.readings.Latest(ctx)
}

// GetByDate 获取某天的读数
func (s *ReadingService) GetByDate(ctx context.Context, date time.Time) (*models.Reading, error) {
	return s.readings.GetByDate(ctx, dateOnly(date))
}

// List 获取读数列表
func (s *ReadingService) List(ctx context.Context, from, to *time.Time, page Page) ([]*models.Reading, error) {
	return s.readings.List(ctx, from, to, page.Limit(), page.Offset())
}

// Count 已保存的读数条数
func (s *ReadingService) Count(ctx context.Context) (int64, error) {
	return s.readings.Count(ctx)
}

// fit 调整加油机数量与站点配置一致
func (s *ReadingService) fit(r *models.Reading) *models.Reading {
	r.PetrolPumps = resizePumps(r.PetrolPumps, s.pumpsPerTank)
	r.DieselPumps = resizePumps(r.DieselPumps, s.pumpsPerTank)
	return r
}

func resizePumps(pumps []models.PumpReading, n int) []models.PumpReading {
	if len(pumps) == n {
		return pumps
	}
	resized := make([]models.PumpReading, n)
	copy(resized, pumps)
	return resized
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
