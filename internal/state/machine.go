package state

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/models"
)

// 卸油流程步骤
const (
	StepPrep    = "prep"
	StepOffload = "offload"
	StepReview  = "review"
	StepSaved   = "saved"
)

// 事件常量
const (
	EventAdvance = "advance"
	EventBack    = "back"
	EventSave    = "save"
	EventReset   = "reset"
)

// PersistFunc 保存卸油记录，返回错误时流程停留在 review
type PersistFunc func(ctx context.Context, refill *models.TankRefill) error

// RefillSession 卸油会话
type RefillSession struct {
	ID       string            `json:"id"`
	Step     string            `json:"step"`
	Since    time.Time         `json:"since"`
	Refill   models.TankRefill `json:"refill"`
	Warnings []ledger.Issue    `json:"warnings,omitempty"`
}

// Machine 卸油流程状态机
type Machine struct {
	mu           sync.RWMutex
	id           string
	cfg          ledger.Config
	fsm          *fsm.FSM
	session      *RefillSession
	guardErr     error
	onStepChange func(id, from, to string)
}

// NewMachine 创建状态机
func NewMachine(id, operator string, cfg ledger.Config, onStepChange func(id, from, to string)) *Machine {
	m := &Machine{
		id:           id,
		cfg:          cfg,
		onStepChange: onStepChange,
		session: &RefillSession{
			ID:     id,
			Step:   StepPrep,
			Since:  time.Now(),
			Refill: models.TankRefill{Operator: operator},
		},
	}

	m.fsm = fsm.NewFSM(
		StepPrep,
		fsm.Events{
			// 向前
			{Name: EventAdvance, Src: []string{StepPrep}, Dst: StepOffload},
			{Name: EventAdvance, Src: []string{StepOffload}, Dst: StepReview},

			// 返回上一步
			{Name: EventBack, Src: []string{StepOffload}, Dst: StepPrep},
			{Name: EventBack, Src: []string{StepReview}, Dst: StepOffload},

			{Name: EventSave, Src: []string{StepReview}, Dst: StepSaved},
			{Name: EventReset, Src: []string{StepSaved}, Dst: StepPrep},
		},
		fsm.Callbacks{
			"before_" + EventAdvance: func(ctx context.Context, e *fsm.Event) {
				var err error
				switch e.Src {
				case StepPrep:
					err = ledger.CheckPrep(&m.session.Refill)
				case StepOffload:
					err = ledger.CheckOffload(&m.session.Refill)
				}
				m.cancelOn(e, err)
			},
			"before_" + EventSave: func(ctx context.Context, e *fsm.Event) {
				refill := m.session.Refill
				ledger.DeriveRefill(&refill)
				warnings, err := ledger.ValidateRefill(&refill, m.cfg)
				m.session.Warnings = warnings
				if err != nil {
					m.cancelOn(e, err)
					return
				}
				if len(e.Args) > 0 {
					if persist, ok := e.Args[0].(PersistFunc); ok && persist != nil {
						if err := persist(ctx, &refill); err != nil {
							m.cancelOn(e, err)
							return
						}
					}
				}
				m.session.Refill = refill
			},
			"enter_" + StepReview: func(ctx context.Context, e *fsm.Event) {
				ledger.DeriveRefill(&m.session.Refill)
				m.session.Warnings, _ = ledger.ValidateRefill(&m.session.Refill, m.cfg)
			},
			"after_" + EventReset: func(ctx context.Context, e *fsm.Event) {
				m.session.Refill = models.TankRefill{Operator: m.session.Refill.Operator}
				m.session.Warnings = nil
			},
			"after_event": func(ctx context.Context, e *fsm.Event) {
				if m.onStepChange != nil && e.Src != e.Dst {
					m.onStepChange(m.id, e.Src, e.Dst)
				}
			},
		},
	)

	return m
}

func (m *Machine) cancelOn(e *fsm.Event, err error) {
	if err == nil {
		return
	}
	m.guardErr = err
	e.Cancel(err)
}

// CurrentStep 获取当前步骤
func (m *Machine) CurrentStep() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// Snapshot 获取会话副本
func (m *Machine) Snapshot() *RefillSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Machine) snapshot() *RefillSession {
	c := *m.session
	c.Step = m.fsm.Current()
	c.Warnings = append([]ledger.Issue(nil), m.session.Warnings...)
	return &c
}

// Edit 修改当前步骤的字段，只能在 step 步骤进行
func (m *Machine) Edit(step string, update func(r *models.TankRefill)) (*RefillSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current := m.fsm.Current(); current != step {
		return nil, ledger.Fail(ledger.KindInvalidTransition, "step",
			"Refill session is at step %s, cannot edit %s fields", current, step)
	}
	update(&m.session.Refill)
	ledger.DeriveRefill(&m.session.Refill)
	if step == StepReview {
		m.session.Warnings, _ = ledger.ValidateRefill(&m.session.Refill, m.cfg)
	}
	return m.snapshot(), nil
}

// Trigger 触发事件
func (m *Machine) Trigger(ctx context.Context, event string, args ...interface{}) (*RefillSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.trigger(ctx, event, args...); err != nil {
		return nil, err
	}
	return m.snapshot(), nil
}

func (m *Machine) trigger(ctx context.Context, event string, args ...interface{}) error {
	m.guardErr = nil
	err := m.fsm.Event(ctx, event, args...)
	if err == nil {
		m.session.Step = m.fsm.Current()
		m.session.Since = time.Now()
		return nil
	}
	if m.guardErr != nil {
		return m.guardErr
	}

	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return ledger.Fail(ledger.KindInvalidTransition, "step", "Cannot %s a refill at step %s", event, invalid.State)
	}
	var unknown fsm.UnknownEventError
	if errors.As(err, &unknown) {
		return ledger.Fail(ledger.KindInvalidTransition, "step", "Unknown refill action %s", event)
	}
	return err
}

// Commit 校验并保存，成功后会话回到 prep 并清空字段
func (m *Machine) Commit(ctx context.Context, persist PersistFunc) (saved models.TankRefill, warnings []ledger.Issue, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.trigger(ctx, EventSave, persist); err != nil {
		return models.TankRefill{}, m.session.Warnings, err
	}
	saved = m.session.Refill
	warnings = append([]ledger.Issue(nil), m.session.Warnings...)
	if err := m.trigger(ctx, EventReset); err != nil {
		return saved, warnings, err
	}
	return saved, warnings, nil
}

// CanTransition 检查是否可以转换
func (m *Machine) CanTransition(event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Can(event)
}

// Manager 卸油会话管理器
type Manager struct {
	mu       sync.RWMutex
	machines map[string]*Machine
	cfg      ledger.Config
	onChange func(id, from, to string)
}

// NewManager 创建管理器
func NewManager(cfg ledger.Config, onChange func(id, from, to string)) *Manager {
	return &Manager{
		machines: make(map[string]*Machine),
		cfg:      cfg,
		onChange: onChange,
	}
}

// Create 新建会话
func (m *Manager) Create(operator string) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	machine := NewMachine(id, operator, m.cfg, m.onChange)
	m.machines[id] = machine
	return machine
}

// Get 获取状态机
func (m *Manager) Get(id string) (*Machine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	machine, ok := m.machines[id]
	return machine, ok
}

// Delete 放弃会话
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.machines[id]; !ok {
		return false
	}
	delete(m.machines, id)
	return true
}

// All 获取所有会话，按开始时间排序
func (m *Manager) All() []*RefillSession {
	m.mu.RLock()
	machines := make([]*Machine, 0, len(m.machines))
	for _, machine := range m.machines {
		machines = append(machines, machine)
	}
	m.mu.RUnlock()

	sessions := make([]*RefillSession, 0, len(machines))
	for _, machine := range machines {
		sessions = append(sessions, machine.Snapshot())
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Since.Before(sessions[j].Since) })
	return sessions
}
