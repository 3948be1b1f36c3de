package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PurgeResult 各表删除条数
type PurgeResult struct {
	Readings       int64 `json:"readings"`
	TankRefills    int64 `json:"tank_refills"`
	GensetReadings int64 `json:"genset_readings"`
	TankLevelLogs  int64 `json:"tank_level_logs"`
}

// PurgeRepository 清除业务数据
type PurgeRepository struct {
	db *DB
}

// NewPurgeRepository 创建清除仓库
func NewPurgeRepository(db *DB) *PurgeRepository {
	return &PurgeRepository{db: db}
}

// Purge 在一个事务内删除读数、卸油、发电机记录和液位日志。设置、用户和当前液位保留。
func (r *PurgeRepository) Purge(ctx context.Context) (*PurgeResult, error) {
	result := &PurgeResult{}
	err := r.db.withTx(ctx, func(tx pgx.Tx) error {
		targets := []struct {
			table string
			count *int64
		}{
			{"readings", &result.Readings},
			{"tank_refills", &result.TankRefills},
			{"genset_readings", &result.GensetReadings},
			{"tank_level_logs", &result.TankLevelLogs},
		}
		for _, t := range targets {
			tag, err := tx.Exec(ctx, "DELETE FROM "+t.table)
			if err != nil {
				return fmt.Errorf("delete %s: %w", t.table, err)
			}
			*t.count = tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("purge data: %w", err)
	}
	return result, nil
}
