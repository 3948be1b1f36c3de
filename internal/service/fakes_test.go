package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/internal/repository"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(topic string, data interface{}) {
	m.Called(topic, data)
}

func newNotifier() *mockNotifier {
	n := &mockNotifier{}
	n.On("Publish", mock.Anything, mock.Anything).Return()
	return n
}

type memReadings struct {
	mu        sync.Mutex
	byDate    map[string]*models.Reading
	upsertErr error
	upserts   int
}

func newMemReadings(saved ...*models.Reading) *memReadings {
	m := &memReadings{byDate: make(map[string]*models.Reading)}
	for _, r := range saved {
		m.byDate[models.DateKey(r.Date)] = r.Clone()
	}
	return m
}

func (m *memReadings) Upsert(ctx context.Context, r *models.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	r.ID = int64(m.upserts)
	m.byDate[models.DateKey(r.Date)] = r.Clone()
	return nil
}

func (m *memReadings) GetByDate(ctx context.Context, date time.Time) (*models.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byDate[models.DateKey(date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *memReadings) sorted() []*models.Reading {
	out := make([]*models.Reading, 0, len(m.byDate))
	for _, r := range m.byDate {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (m *memReadings) Latest(ctx context.Context) (*models.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	return all[0], nil
}

func (m *memReadings) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*models.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Reading
	for _, r := range m.sorted() {
		if from != nil && r.Date.Before(*from) || to != nil && r.Date.After(*to) {
			continue
		}
		out = append(out, r)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memReadings) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byDate)), nil
}

type memLevels struct {
	mu     sync.Mutex
	levels map[models.FuelType]decimal.Decimal
	logs   []*models.TankLevelLog
	setErr error
}

func newMemLevels() *memLevels {
	return &memLevels{levels: map[models.FuelType]decimal.Decimal{}}
}

func (m *memLevels) Get(ctx context.Context) (*models.TankLevels, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.TankLevels{Petrol: m.levels[models.FuelPetrol], Diesel: m.levels[models.FuelDiesel]}, nil
}

func (m *memLevels) write(fuel models.FuelType, level decimal.Decimal, change models.LevelChange) (*models.TankLevelLog, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	entry := &models.TankLevelLog{
		TankType: fuel, Delta: level.Sub(m.levels[fuel]), NewLevel: level,
		Event: change.Event, RefID: change.RefID, User: change.User,
	}
	m.levels[fuel] = level
	m.logs = append(m.logs, entry)
	return entry, nil
}

func (m *memLevels) Set(ctx context.Context, fuel models.FuelType, level decimal.Decimal, change models.LevelChange) (*models.TankLevelLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(fuel, level, change)
}

func (m *memLevels) ApplyDelta(ctx context.Context, fuel models.FuelType, delta decimal.Decimal, change models.LevelChange) (*models.TankLevelLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(fuel, decimal.Max(decimal.Zero, m.levels[fuel].Add(delta)), change)
}

func (m *memLevels) ListLogs(ctx context.Context, fuel models.FuelType, limit, offset int) ([]*models.TankLevelLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TankLevelLog
	for _, l := range m.logs {
		if fuel == "" || l.TankType == fuel {
			out = append(out, l)
		}
	}
	return out, nil
}

type memRefills struct {
	mu        sync.Mutex
	refills   []*models.TankRefill
	createErr error
}

func (m *memRefills) Create(ctx context.Context, r *models.TankRefill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	c := *r
	m.refills = append(m.refills, &c)
	return nil
}

func (m *memRefills) GetByID(ctx context.Context, id string) (*models.TankRefill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.refills {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRefills) List(ctx context.Context, limit, offset int) ([]*models.TankRefill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.TankRefill, 0, len(m.refills))
	for i := len(m.refills) - 1; i >= 0; i-- {
		out = append(out, m.refills[i])
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRefills) ListBetween(ctx context.Context, from, to time.Time) ([]*models.TankRefill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TankRefill
	for _, r := range m.refills {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memGenset struct {
	mu       sync.Mutex
	readings []*models.GensetReading
}

func (m *memGenset) Create(ctx context.Context, g *models.GensetReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *g
	m.readings = append(m.readings, &c)
	return nil
}

func (m *memGenset) Latest(ctx context.Context) (*models.GensetReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.readings) == 0 {
		return nil, repository.ErrNotFound
	}
	return m.readings[len(m.readings)-1], nil
}

func (m *memGenset) List(ctx context.Context, limit int) ([]*models.GensetReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.GensetReading
	for i := len(m.readings) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.readings[i])
	}
	return out, nil
}

func (m *memGenset) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.readings)), nil
}

func (m *memGenset) FuelAddedSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, g := range m.readings {
		if !g.Timestamp.Before(since) {
			total = total.Add(g.FuelAdded)
		}
	}
	return total, nil
}

type memSettings struct {
	prices  *models.FuelPrices
	profile *models.SystemProfile
}

func (m *memSettings) GetFuelPrices(ctx context.Context) (*models.FuelPrices, error) {
	if m.prices == nil {
		return nil, repository.ErrNotFound
	}
	return m.prices, nil
}

func (m *memSettings) SaveFuelPrices(ctx context.Context, p *models.FuelPrices) error {
	m.prices = p
	return nil
}

func (m *memSettings) GetProfile(ctx context.Context) (*models.SystemProfile, error) {
	if m.profile == nil {
		return nil, repository.ErrNotFound
	}
	return m.profile, nil
}

func (m *memSettings) SaveProfile(ctx context.Context, p *models.SystemProfile) error {
	m.profile = p
	return nil
}

type memUsers struct {
	users map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*models.User)}
}

func (m *memUsers) Create(ctx context.Context, u *models.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) Update(ctx context.Context, u *models.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) List(ctx context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}
