package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/repository"
	"github.com/Numzn/station-main/pkg/ws"
)

// DraftResetter 清除数据后重置草稿
type DraftResetter interface {
	Reset()
}

// PurgeService 清除业务数据
type PurgeService struct {
	logger   *zap.Logger
	purger   Purger
	drafts   DraftResetter
	notifier Notifier
}

// NewPurgeService 创建清除服务
func NewPurgeService(logger *zap.Logger, purger Purger, drafts DraftResetter, notifier Notifier) *PurgeService {
	return &PurgeService{logger: logger, purger: purger, drafts: drafts, notifier: notifier}
}

// Purge 删除读数、卸油、发电机记录和液位日志，必须显式确认
func (s *PurgeService) Purge(ctx context.Context, confirm bool) (*repository.PurgeResult, error) {
	if !confirm {
		return nil, ledger.Fail(ledger.KindMissingField, "confirm", "Confirmation is required to clear all data")
	}

	result, err := s.purger.Purge(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear data: %w", err)
	}

	s.logger.Warn("Station data cleared",
		zap.Int64("readings", result.Readings),
		zap.Int64("tank_refills", result.TankRefills),
		zap.Int64("genset_readings", result.GensetReadings),
		zap.Int64("tank_level_logs", result.TankLevelLogs),
	)

	s.drafts.Reset()
	s.notifier.Publish(ws.TopicReadings, nil)
	s.notifier.Publish(ws.TopicRefills, nil)
	s.notifier.Publish(ws.TopicGenset, nil)
	return result, nil
}
