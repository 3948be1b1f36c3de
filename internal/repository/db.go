package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// Pool 仓库用到的连接池方法，*pgxpool.Pool 和 pgxmock 都满足
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// DB 数据库连接池封装
type DB struct {
	Pool Pool
}

// NewWithPool 使用已有连接池
func NewWithPool(pool Pool) *DB {
	return &DB{Pool: pool}
}

// New 创建数据库连接
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// 连接池配置
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// 测试连接
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Ping 检查连接
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Migrate 执行数据库迁移
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateReadings,
		migrationCreateTankRefills,
		migrationCreateGensetReadings,
		migrationCreateTankLevels,
		migrationCreateTankLevelLogs,
		migrationCreateSettings,
		migrationCreateUsers,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// withTx 在事务内执行 fn，出错回滚，否则提交
func (db *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// 数据库迁移 SQL
const migrationCreateReadings = `
CREATE TABLE IF NOT EXISTS readings (
    id BIGSERIAL PRIMARY KEY,
    reading_date DATE NOT NULL UNIQUE,
    petrol_pumps JSONB NOT NULL DEFAULT '[]',
    diesel_pumps JSONB NOT NULL DEFAULT '[]',
    petrol_tank JSONB NOT NULL DEFAULT '{}',
    diesel_tank JSONB NOT NULL DEFAULT '{}',
    operator VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_readings_reading_date ON readings(reading_date);
`

const migrationCreateTankRefills = `
CREATE TABLE IF NOT EXISTS tank_refills (
    id TEXT PRIMARY KEY,
    tank_type VARCHAR(16) NOT NULL,
    invoice_number VARCHAR(255) NOT NULL,
    initial_dip NUMERIC NOT NULL DEFAULT 0,
    expected_delivery NUMERIC NOT NULL DEFAULT 0,
    final_dip NUMERIC NOT NULL DEFAULT 0,
    actual_delivered NUMERIC NOT NULL DEFAULT 0,
    variance NUMERIC NOT NULL DEFAULT 0,
    variance_percent NUMERIC NOT NULL DEFAULT 0,
    status VARCHAR(16) NOT NULL,
    operator VARCHAR(255) NOT NULL DEFAULT '',
    signature BOOLEAN NOT NULL DEFAULT false,
    notes TEXT NOT NULL DEFAULT '',
    photo_url TEXT NOT NULL DEFAULT '',
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tank_refills_recorded_at ON tank_refills(recorded_at);
`

const migrationCreateGensetReadings = `
CREATE TABLE IF NOT EXISTS genset_readings (
    id TEXT PRIMARY KEY,
    running_hours NUMERIC NOT NULL,
    hours_since_last_refuel NUMERIC NOT NULL DEFAULT 0,
    fuel_added NUMERIC NOT NULL DEFAULT 0,
    fuel_consumption_rate NUMERIC NOT NULL DEFAULT 0,
    operator VARCHAR(255) NOT NULL DEFAULT '',
    genset_status VARCHAR(16) NOT NULL,
    power_outage_start TIMESTAMP WITH TIME ZONE,
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_genset_readings_recorded_at ON genset_readings(recorded_at);
`

// 每个油罐一行，启动时预置
const migrationCreateTankLevels = `
CREATE TABLE IF NOT EXISTS tank_levels (
    tank_type VARCHAR(16) PRIMARY KEY,
    level NUMERIC NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE
);
INSERT INTO tank_levels (tank_type) VALUES ('petrol'), ('diesel') ON CONFLICT DO NOTHING;
`

const migrationCreateTankLevelLogs = `
CREATE TABLE IF NOT EXISTS tank_level_logs (
    id TEXT PRIMARY KEY,
    tank_type VARCHAR(16) NOT NULL REFERENCES tank_levels(tank_type),
    delta NUMERIC NOT NULL,
    new_level NUMERIC NOT NULL,
    event VARCHAR(16) NOT NULL,
    ref_id TEXT NOT NULL DEFAULT '',
    user_name VARCHAR(255) NOT NULL DEFAULT '',
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tank_level_logs_recorded_at ON tank_level_logs(recorded_at);
`

const migrationCreateSettings = `
CREATE TABLE IF NOT EXISTS settings (
    key VARCHAR(64) PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

const migrationCreateUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL,
    phone VARCHAR(64) NOT NULL,
    role VARCHAR(16) NOT NULL DEFAULT 'staff',
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`
