package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/pkg/ws"
)

// GensetService 发电机加油服务
type GensetService struct {
	logger   *zap.Logger
	cfg      ledger.Config
	store    GensetStore
	notifier Notifier
	now      func() time.Time

	// 串行化单调性检查与写入
	mu sync.Mutex
}

// NewGensetService 创建发电机服务
func NewGensetService(logger *zap.Logger, cfg ledger.Config, store GensetStore, notifier Notifier) *GensetService {
	return &GensetService{
		logger:   logger,
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// Record 记录一次发电机加油
func (s *GensetService) Record(ctx context.Context, in ledger.GensetInput) (*models.GensetReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.store.Latest(ctx)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("load last genset reading: %w", err)
	}

	rec, err := ledger.RecordGensetReading(in, last, s.cfg, s.now())
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.NewString()

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save genset reading: %w", err)
	}

	s.logger.Info("Genset refuel recorded",
		zap.String("running_hours", rec.RunningHours.String()),
		zap.String("hours_since_last_refuel", rec.HoursSinceLastRefuel.String()),
		zap.String("operator", rec.Operator),
	)

	if summary, err := s.Summary(ctx); err == nil {
		s.notifier.Publish(ws.TopicGenset, summary)
	} else {
		s.logger.Warn("Failed to load genset summary", zap.Error(err))
	}
	return rec, nil
}

// Recent 最近的加油记录
func (s *GensetService) Recent(ctx context.Context, limit int) ([]*models.GensetReading, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.List(ctx, limit)
}

// Summary 上次加油、下次加油时间和本月加油量
func (s *GensetService) Summary(ctx context.Context) (*models.GensetSummary, error) {
	summary := &models.GensetSummary{}

	last, err := s.store.Latest(ctx)
	switch {
	case isNotFound(err):
	case err != nil:
		return nil, fmt.Errorf("load last genset reading: %w", err)
	default:
		count, err := s.store.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count genset readings: %w", err)
		}
		summary.LastReading = last
		summary.NextRefuelAt = ledger.NextRefuelAt(last, count > 1)
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	added, err := s.store.FuelAddedSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("sum genset fuel: %w", err)
	}
	summary.FuelAddedThisMonth = added
	return summary, nil
}
