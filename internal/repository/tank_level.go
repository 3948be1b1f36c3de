package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Numzn/station-main/internal/models"
)

// TankLevelRepository 油罐液位仓库
type TankLevelRepository struct {
	db *DB
}

// NewTankLevelRepository 创建液位仓库
func NewTankLevelRepository(db *DB) *TankLevelRepository {
	return &TankLevelRepository{db: db}
}

// Get 获取当前液位
func (r *TankLevelRepository) Get(ctx context.Context) (*models.TankLevels, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT tank_type, level, updated_at FROM tank_levels`)
	if err != nil {
		return nil, fmt.Errorf("get tank levels: %w", err)
	}
	defer rows.Close()

	levels := &models.TankLevels{}
	for rows.Next() {
		var (
			fuel      models.FuelType
			level     decimal.Decimal
			updatedAt *time.Time
		)
		if err := rows.Scan(&fuel, &level, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan tank level: %w", err)
		}
		switch fuel {
		case models.FuelPetrol:
			levels.Petrol = level
		case models.FuelDiesel:
			levels.Diesel = level
		}
		if updatedAt != nil && (levels.LastUpdated == nil || updatedAt.After(*levels.LastUpdated)) {
			levels.LastUpdated = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get tank levels: %w", err)
	}
	return levels, nil
}

// Set 设置液位 (量油或卸油后的实测值)
func (r *TankLevelRepository) Set(ctx context.Context, fuel models.FuelType, level decimal.Decimal, change models.LevelChange) (*models.TankLevelLog, error) {
	return r.update(ctx, fuel, change, func(current decimal.Decimal) decimal.Decimal {
		return level
	})
}

// ApplyDelta 按增量调整液位，结果不低于 0
func (r *TankLevelRepository) ApplyDelta(ctx context.Context, fuel models.FuelType, delta decimal.Decimal, change models.LevelChange) (*models.TankLevelLog, error) {
	return r.update(ctx, fuel, change, func(current decimal.Decimal) decimal.Decimal {
		return decimal.Max(decimal.Zero, current.Add(delta))
	})
}

// update 在事务内锁定液位行，写入新值并追加日志
func (r *TankLevelRepository) update(ctx context.Context, fuel models.FuelType, change models.LevelChange, next func(current decimal.Decimal) decimal.Decimal) (*models.TankLevelLog, error) {
	var entry *models.TankLevelLog
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		var current decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT level FROM tank_levels WHERE tank_type = $1 FOR UPDATE`, fuel).Scan(&current)
		if err != nil {
			return fmt.Errorf("lock tank level: %w", notFound(err))
		}

		level := next(current)
		now := time.Now()
		if _, err := tx.Exec(ctx, `UPDATE tank_levels SET level = $2, updated_at = $3 WHERE tank_type = $1`, fuel, level, now); err != nil {
			return fmt.Errorf("update tank level: %w", err)
		}

		entry = &models.TankLevelLog{
			ID:         uuid.NewString(),
			TankType:   fuel,
			Delta:      level.Sub(current),
			NewLevel:   level,
			Event:      change.Event,
			RefID:      change.RefID,
			User:       change.User,
			RecordedAt: now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO tank_level_logs (id, tank_type, delta, new_level, event, ref_id, user_name, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, entry.ID, entry.TankType, entry.Delta, entry.NewLevel, entry.Event, entry.RefID, entry.User, entry.RecordedAt)
		if err != nil {
			return fmt.Errorf("insert tank level log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListLogs 获取液位日志，fuel 为空时返回全部油罐
func (r *TankLevelRepository) ListLogs(ctx context.Context, fuel models.FuelType, limit, offset int) ([]*models.TankLevelLog, error) {
	query := `
		SELECT id, tank_type, delta, new_level, event, ref_id, user_name, recorded_at
		FROM tank_level_logs
		WHERE ($1 = '' OR tank_type = $1)
		ORDER BY recorded_at DESC LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Pool.Query(ctx, query, string(fuel), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tank level logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.TankLevelLog
	for rows.Next() {
		l := &models.TankLevelLog{}
		err := rows.Scan(&l.ID, &l.TankType, &l.Delta, &l.NewLevel, &l.Event, &l.RefID, &l.User, &l.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan tank level log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tank level logs: %w", err)
	}
	return logs, nil
}
