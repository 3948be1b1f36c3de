package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Numzn/station-main/internal/models"
)

// ReadingRepository 日读数仓库
type ReadingRepository struct {
	db *DB
}

// NewReadingRepository 创建读数仓库
func NewReadingRepository(db *DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

const readingColumns = `id, reading_date, petrol_pumps, diesel_pumps, petrol_tank, diesel_tank, operator, created_at, updated_at`

// Upsert 按日期保存读数，同一天重复保存时后写覆盖
func (r *ReadingRepository) Upsert(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO readings (reading_date, petrol_pumps, diesel_pumps, petrol_tank, diesel_tank, operator)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (reading_date) DO UPDATE SET
			petrol_pumps = EXCLUDED.petrol_pumps,
			diesel_pumps = EXCLUDED.diesel_pumps,
			petrol_tank = EXCLUDED.petrol_tank,
			diesel_tank = EXCLUDED.diesel_tank,
			operator = EXCLUDED.operator,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		reading.Date,
		reading.PetrolPumps,
		reading.DieselPumps,
		reading.PetrolTank,
		reading.DieselTank,
		reading.Operator,
	).Scan(&reading.ID, &reading.CreatedAt, &reading.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert reading: %w", err)
	}
	return nil
}

// GetByDate 获取某天的读数
func (r *ReadingRepository) GetByDate(ctx context.Context, date time.Time) (*models.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings WHERE reading_date = $1`
	reading, err := scanReading(r.db.Pool.QueryRow(ctx, query, date))
	if err != nil {
		return nil, fmt.Errorf("get reading: %w", notFound(err))
	}
	return reading, nil
}

// Latest 获取最近一次保存的读数
func (r *ReadingRepository) Latest(ctx context.Context) (*models.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM readings ORDER BY reading_date DESC LIMIT 1`
	reading, err := scanReading(r.db.Pool.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("get latest reading: %w", notFound(err))
	}
	return reading, nil
}

// List 获取读数列表，按日期倒序，from/to 为空时不限制
func (r *ReadingRepository) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*models.Reading, error) {
	query := `
		SELECT ` + readingColumns + ` FROM readings
		WHERE ($1::date IS NULL OR reading_date >= $1)
		  AND ($2::date IS NULL OR reading_date <= $2)
		ORDER BY reading_date DESC LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Pool.Query(ctx, query, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []*models.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return readings, nil
}

// Count 统计读数条数
func (r *ReadingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

func scanReading(row pgx.Row) (*models.Reading, error) {
	reading := &models.Reading{}
	err := row.Scan(
		&reading.ID,
		&reading.Date,
		&reading.PetrolPumps,
		&reading.DieselPumps,
		&reading.PetrolTank,
		&reading.DieselTank,
		&reading.Operator,
		&reading.CreatedAt,
		&reading.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reading, nil
}
