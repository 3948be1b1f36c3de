package repository

import (
	"context"
	"fmt"

	"github.com/Numzn/station-main/internal/models"
)

// SettingsRepository 站点设置仓库 (键值，值为 JSONB)
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository 创建设置仓库
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetFuelPrices 获取油价
func (r *SettingsRepository) GetFuelPrices(ctx context.Context) (*models.FuelPrices, error) {
	prices := &models.FuelPrices{}
	if err := r.get(ctx, models.SettingsFuelPrices, prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// SaveFuelPrices 保存油价
func (r *SettingsRepository) SaveFuelPrices(ctx context.Context, prices *models.FuelPrices) error {
	return r.put(ctx, models.SettingsFuelPrices, prices)
}

// GetProfile 获取站点信息
func (r *SettingsRepository) GetProfile(ctx context.Context) (*models.SystemProfile, error) {
	profile := &models.SystemProfile{}
	if err := r.get(ctx, models.SettingsSystemProfile, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveProfile 保存站点信息
func (r *SettingsRepository) SaveProfile(ctx context.Context, profile *models.SystemProfile) error {
	return r.put(ctx, models.SettingsSystemProfile, profile)
}

func (r *SettingsRepository) get(ctx context.Context, key string, dst interface{}) error {
	err := r.db.Pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(dst)
	if err != nil {
		return fmt.Errorf("get setting %s: %w", key, notFound(err))
	}
	return nil
}

func (r *SettingsRepository) put(ctx context.Context, key string, value interface{}) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.Pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
