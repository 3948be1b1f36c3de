package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Numzn/station-main/internal/models"
)

// RefillRepository 卸油记录仓库
type RefillRepository struct {
	db *DB
}

// NewRefillRepository 创建卸油仓库
func NewRefillRepository(db *DB) *RefillRepository {
	return &RefillRepository{db: db}
}

const refillColumns = `id, tank_type, invoice_number, initial_dip, expected_delivery, final_dip, actual_delivered,
	variance, variance_percent, status, operator, signature, notes, photo_url, recorded_at`

// Create 保存卸油记录
func (r *RefillRepository) Create(ctx context.Context, refill *models.TankRefill) error {
	query := `
		INSERT INTO tank_refills (` + refillColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		refill.ID,
		refill.TankType,
		refill.InvoiceNumber,
		refill.InitialDip,
		refill.ExpectedDelivery,
		refill.FinalDip,
		refill.ActualDelivered,
		refill.Variance,
		refill.VariancePercent,
		refill.Status,
		refill.Operator,
		refill.Signature,
		refill.Notes,
		refill.PhotoURL,
		refill.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert tank refill: %w", err)
	}
	return nil
}

// GetByID 获取卸油记录
func (r *RefillRepository) GetByID(ctx context.Context, id string) (*models.TankRefill, error) {
	query := `SELECT ` + refillColumns + ` FROM tank_refills WHERE id = $1`
	refill, err := scanRefill(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get tank refill: %w", notFound(err))
	}
	return refill, nil
}

// List 获取最近的卸油记录
func (r *RefillRepository) List(ctx context.Context, limit, offset int) ([]*models.TankRefill, error) {
	query := `SELECT ` + refillColumns + ` FROM tank_refills ORDER BY recorded_at DESC LIMIT $1 OFFSET $2`
	return r.query(ctx, query, limit, offset)
}

// ListBetween 获取时间范围内的卸油记录，按时间正序
func (r *RefillRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.TankRefill, error) {
	query := `SELECT ` + refillColumns + ` FROM tank_refills WHERE recorded_at >= $1 AND recorded_at < $2 ORDER BY recorded_at`
	return r.query(ctx, query, from, to)
}

func (r *RefillRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.TankRefill, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tank refills: %w", err)
	}
	defer rows.Close()

	var refills []*models.TankRefill
	for rows.Next() {
		refill, err := scanRefill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tank refill: %w", err)
		}
		refills = append(refills, refill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tank refills: %w", err)
	}
	return refills, nil
}

func scanRefill(row pgx.Row) (*models.TankRefill, error) {
	refill := &models.TankRefill{}
	err := row.Scan(
		&refill.ID,
		&refill.TankType,
		&refill.InvoiceNumber,
		&refill.InitialDip,
		&refill.ExpectedDelivery,
		&refill.FinalDip,
		&refill.ActualDelivered,
		&refill.Variance,
		&refill.VariancePercent,
		&refill.Status,
		&refill.Operator,
		&refill.Signature,
		&refill.Notes,
		&refill.PhotoURL,
		&refill.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return refill, nil
}
