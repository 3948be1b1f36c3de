package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/internal/state"
	"github.com/Numzn/station-main/pkg/ws"
)

// ErrSessionNotFound 卸油会话不存在
var ErrSessionNotFound = errors.New("refill session not found")

// PrepInput 准备阶段字段
type PrepInput struct {
	TankType         *string          `json:"tank_type"`
	InvoiceNumber    *string          `json:"invoice_number"`
	InitialDip       *decimal.Decimal `json:"initial_dip"`
	ExpectedDelivery *decimal.Decimal `json:"expected_delivery"`
}

// OffloadInput 卸油阶段字段
type OffloadInput struct {
	FinalDip *decimal.Decimal `json:"final_dip"`
	Notes    *string          `json:"notes"`
	PhotoURL *string          `json:"photo_url"`
}

// ReviewInput 复核阶段字段
type ReviewInput struct {
	Signature *bool   `json:"signature"`
	Notes     *string `json:"notes"`
	PhotoURL  *string `json:"photo_url"`
}

// SaveRefillResult 卸油保存结果
type SaveRefillResult struct {
	Refill   models.TankRefill    `json:"refill"`
	Session  *state.RefillSession `json:"session"`
	Warnings []ledger.Issue       `json:"warnings,omitempty"`
	Notices  []string             `json:"notices,omitempty"`
}

// RefillService 油罐卸油服务
type RefillService struct {
	logger   *zap.Logger
	cfg      ledger.Config
	refills  RefillStore
	levels   TankLevelStore
	notifier Notifier
	sessions *state.Manager
	now      func() time.Time
}

// NewRefillService 创建卸油服务
func NewRefillService(logger *zap.Logger, cfg ledger.Config, refills RefillStore, levels TankLevelStore, notifier Notifier) *RefillService {
	s := &RefillService{
		logger:   logger,
		cfg:      cfg,
		refills:  refills,
		levels:   levels,
		notifier: notifier,
		now:      time.Now,
	}
	s.sessions = state.NewManager(cfg, s.onStepChange)
	return s
}

func (s *RefillService) onStepChange(id, from, to string) {
	s.logger.Debug("Refill session step changed",
		zap.String("session_id", id),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// CreateSession 开始新的卸油流程
func (s *RefillService) CreateSession(operator string) *state.RefillSession {
	session := s.sessions.Create(operator).Snapshot()
	s.notifier.Publish(ws.TopicRefills, session)
	return session
}

// Session 获取会话
func (s *RefillService) Session(id string) (*state.RefillSession, error) {
	m, err := s.machine(id)
	if err != nil {
		return nil, err
	}
	return m.Snapshot(), nil
}

// Sessions 所有进行中的会话
func (s *RefillService) Sessions() []*state.RefillSession {
	return s.sessions.All()
}

// Discard 放弃会话
func (s *RefillService) Discard(id string) error {
	if !s.sessions.Delete(id) {
		return ErrSessionNotFound
	}
	return nil
}

// UpdatePrep 修改准备阶段字段
func (s *RefillService) UpdatePrep(id string, in PrepInput) (*state.RefillSession, error) {
	var fuel models.FuelType
	if in.TankType != nil && *in.TankType != "" {
		f, err := models.ParseFuelType(*in.TankType)
		if err != nil {
			return nil, ledger.Fail(ledger.KindMissingField, "tank_type", "Tank type must be petrol or diesel")
		}
		fuel = f
	}
	return s.edit(id, state.StepPrep, func(r *models.TankRefill) {
		if in.TankType != nil {
			r.TankType = fuel
		}
		if in.InvoiceNumber != nil {
			r.InvoiceNumber = strings.TrimSpace(*in.InvoiceNumber)
		}
		if in.InitialDip != nil {
			r.InitialDip = *in.InitialDip
		}
		if in.ExpectedDelivery != nil {
			r.ExpectedDelivery = *in.ExpectedDelivery
		}
	})
}

// UpdateOffload 修改卸油阶段字段
func (s *RefillService) UpdateOffload(id string, in OffloadInput) (*state.RefillSession, error) {
	return s.edit(id, state.StepOffload, func(r *models.TankRefill) {
		if in.FinalDip != nil {
			r.FinalDip = *in.FinalDip
		}
		if in.Notes != nil {
			r.Notes = *in.Notes
		}
		if in.PhotoURL != nil {
			r.PhotoURL = *in.PhotoURL
		}
	})
}

// UpdateReview 修改复核阶段字段
func (s *RefillService) UpdateReview(id string, in ReviewInput) (*state.RefillSession, error) {
	return s.edit(id, state.StepReview, func(r *models.TankRefill) {
		if in.Signature != nil {
			r.Signature = *in.Signature
		}
		if in.Notes != nil {
			r.Notes = *in.Notes
		}
		if in.PhotoURL != nil {
			r.PhotoURL = *in.PhotoURL
		}
	})
}

func (s *RefillService) edit(id, step string, update func(r *models.TankRefill)) (*state.RefillSession, error) {
	m, err := s.machine(id)
	if err != nil {
		return nil, err
	}
	session, err := m.Edit(step, update)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ws.TopicRefills, session)
	return session, nil
}

// Advance 进入下一步
func (s *RefillService) Advance(ctx context.Context, id string) (*state.RefillSession, error) {
	return s.trigger(ctx, id, state.EventAdvance)
}

// Back 返回上一步
func (s *RefillService) Back(ctx context.Context, id string) (*state.RefillSession, error) {
	return s.trigger(ctx, id, state.EventBack)
}

func (s *RefillService) trigger(ctx context.Context, id, event string) (*state.RefillSession, error) {
	m, err := s.machine(id)
	if err != nil {
		return nil, err
	}
	session, err := m.Trigger(ctx, event)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(ws.TopicRefills, session)
	return session, nil
}

// Save 保存卸油记录并把液位设为卸油后的量油值
func (s *RefillService) Save(ctx context.Context, id string) (*SaveRefillResult, error) {
	m, err := s.machine(id)
	if err != nil {
		return nil, err
	}

	saved, warnings, err := m.Commit(ctx, func(ctx context.Context, r *models.TankRefill) error {
		r.ID = uuid.NewString()
		r.Timestamp = s.now()
		if err := s.refills.Create(ctx, r); err != nil {
			return fmt.Errorf("save tank refill: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tank refill saved",
		zap.String("refill_id", saved.ID),
		zap.String("tank", string(saved.TankType)),
		zap.String("invoice", saved.InvoiceNumber),
		zap.String("actual_delivered", saved.ActualDelivered.String()),
		zap.String("status", string(saved.Status)),
	)

	result := &SaveRefillResult{Refill: saved, Session: m.Snapshot(), Warnings: warnings}

	// 液位更新与卸油记录不在同一事务
	change := models.LevelChange{Event: models.LevelEventRefill, RefID: saved.ID, User: saved.Operator}
	if _, err := s.levels.Set(ctx, saved.TankType, saved.FinalDip, change); err != nil {
		s.logger.Warn("Failed to update tank level after refill", zap.String("refill_id", saved.ID), zap.Error(err))
		result.Notices = append(result.Notices, "Refill saved but the tank level was not updated, please adjust it manually")
	} else if levels, err := s.levels.Get(ctx); err == nil {
		s.notifier.Publish(ws.TopicTankLevels, levels)
	}

	s.notifier.Publish(ws.TopicRefills, result)
	return result, nil
}

// Recent 最近的卸油记录
func (s *RefillService) Recent(ctx context.Context, page Page) ([]*models.TankRefill, error) {
	if page.PerPage <= 0 {
		page.PerPage = 10
	}
	return s.refills.List(ctx, page.Limit(), page.Offset())
}

// Get 获取卸油记录
func (s *RefillService) Get(ctx context.Context, id string) (*models.TankRefill, error) {
	return s.refills.GetByID(ctx, id)
}

func (s *RefillService) machine(id string) (*state.Machine, error) {
	m, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return m, nil
}
