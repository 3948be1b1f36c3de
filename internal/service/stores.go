package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/internal/repository"
)

// 服务依赖的存储接口，由 repository 包实现

type ReadingStore interface {
	Upsert(ctx context.Context, reading *models.Reading) error
	GetByDate(ctx context.Context, date time.Time) (*models.Reading, error)
	Latest(ctx context.Context) (*models.Reading, error)
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*models.Reading, error)
	Count(ctx context.Context) (int64, error)
}

type RefillStore interface {
	Create(ctx context.Context, refill *models.TankRefill) error
	GetByID(ctx context.Context, id string) (*models.TankRefill, error)
	List(ctx context.Context, limit, offset int) ([]*models.TankRefill, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.TankRefill, error)
}

type GensetStore interface {
	Create(ctx context.Context, g *models.GensetReading) error
	Latest(ctx context.Context) (*models.GensetReading, error)
	List(ctx context.Context, limit int) ([]*models.GensetReading, error)
	Count(ctx context.Context) (int64, error)
	FuelAddedSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

type TankLevelStore interface {
	Get(ctx context.Context) (*models.TankLevels, error)
	Set(ctx context.Context, fuel models.FuelType, level decimal.Decimal, change models.LevelChange) (*models.TankLevelLog, error)
	ApplyDelta(ctx context.Context, fuel models.FuelType, delta decimal.Decimal, change models.LevelChange) (*models.TankLevelLog, error)
	ListLogs(ctx context.Context, fuel models.FuelType, limit, offset int) ([]*models.TankLevelLog, error)
}

type SettingsStore interface {
	GetFuelPrices(ctx context.Context) (*models.FuelPrices, error)
	SaveFuelPrices(ctx context.Context, prices *models.FuelPrices) error
	GetProfile(ctx context.Context) (*models.SystemProfile, error)
	SaveProfile(ctx context.Context, profile *models.SystemProfile) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type Purger interface {
	Purge(ctx context.Context) (*repository.PurgeResult, error)
}

// Notifier 推送数据变化 (ws.Hub)
type Notifier interface {
	Publish(topic string, data interface{})
}

// ErrNotFound 记录不存在
var ErrNotFound = repository.ErrNotFound

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// Page 分页参数
type Page struct {
	Page    int
	PerPage int
}

// Limit 每页条数，默认 20，最大 100
func (p Page) Limit() int {
	switch {
	case p.PerPage <= 0:
		return 20
	case p.PerPage > 100:
		return 100
	}
	return p.PerPage
}

// Offset 偏移量
func (p Page) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}
