package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Numzn/station-main/internal/models"
)

// GensetRepository 发电机记录仓库
type GensetRepository struct {
	db *DB
}

// NewGensetRepository 创建发电机仓库
func NewGensetRepository(db *DB) *GensetRepository {
	return &GensetRepository{db: db}
}

const gensetColumns = `id, running_hours, hours_since_last_refuel, fuel_added, fuel_consumption_rate,
	operator, genset_status, power_outage_start, recorded_at`

// Create 保存发电机加油记录
func (r *GensetRepository) Create(ctx context.Context, g *models.GensetReading) error {
	query := `
		INSERT INTO genset_readings (` + gensetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		g.ID,
		g.RunningHours,
		g.HoursSinceLastRefuel,
		g.FuelAdded,
		g.FuelConsumptionRate,
		g.Operator,
		g.GensetStatus,
		g.PowerOutageStart,
		g.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert genset reading: %w", err)
	}
	return nil
}

// Latest 获取最近一条记录
func (r *GensetRepository) Latest(ctx context.Context) (*models.GensetReading, error) {
	query := `SELECT ` + gensetColumns + ` FROM genset_readings ORDER BY recorded_at DESC LIMIT 1`
	g, err := scanGenset(r.db.Pool.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("get latest genset reading: %w", notFound(err))
	}
	return g, nil
}

// List 获取最近的记录
func (r *GensetRepository) List(ctx context.Context, limit int) ([]*models.GensetReading, error) {
	query := `SELECT ` + gensetColumns + ` FROM genset_readings ORDER BY recorded_at DESC LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list genset readings: %w", err)
	}
	defer rows.Close()

	var readings []*models.GensetReading
	for rows.Next() {
		g, err := scanGenset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan genset reading: %w", err)
		}
		readings = append(readings, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list genset readings: %w", err)
	}
	return readings, nil
}

// Count 统计记录数
func (r *GensetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM genset_readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count genset readings: %w", err)
	}
	return n, nil
}

// FuelAddedSince 统计某时间之后的加油量
func (r *GensetRepository) FuelAddedSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(fuel_added), 0) FROM genset_readings WHERE recorded_at >= $1`
	if err := r.db.Pool.QueryRow(ctx, query, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum genset fuel: %w", err)
	}
	return total, nil
}

func scanGenset(row pgx.Row) (*models.GensetReading, error) {
	g := &models.GensetReading{}
	err := row.Scan(
		&g.ID,
		&g.RunningHours,
		&g.HoursSinceLastRefuel,
		&g.FuelAdded,
		&g.FuelConsumptionRate,
		&g.Operator,
		&g.GensetStatus,
		&g.PowerOutageStart,
		&g.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
