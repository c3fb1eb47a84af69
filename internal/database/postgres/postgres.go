package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx both *pgxpool.Pool and pgx.Tx satisfy.
// Repositories depend on it so they run equally inside and outside
// transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Init connects a pool and bootstraps the schema.
func Init(dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := bootstrap(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		capability TEXT NOT NULL DEFAULT 'manage_catalog',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		parent_id BIGINT NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		sku TEXT,
		type TEXT NOT NULL DEFAULT 'simple',
		status TEXT NOT NULL DEFAULT 'publish',
		category TEXT NOT NULL DEFAULT '',
		regular_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		sale_price DOUBLE PRECISION,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		stock_status TEXT NOT NULL DEFAULT 'instock',
		manage_stock BOOLEAN NOT NULL DEFAULT false,
		weight DOUBLE PRECISION NOT NULL DEFAULT 0,
		length DOUBLE PRECISION NOT NULL DEFAULT 0,
		width DOUBLE PRECISION NOT NULL DEFAULT 0,
		height DOUBLE PRECISION NOT NULL DEFAULT 0,
		tax_status TEXT NOT NULL DEFAULT 'taxable',
		dynamic_pricing BOOLEAN NOT NULL DEFAULT false,
		currency_type TEXT NOT NULL DEFAULT '',
		base_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		markup DOUBLE PRECISION NOT NULL DEFAULT 0,
		markup_type TEXT NOT NULL DEFAULT 'percentage',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS products_sku_idx ON products (sku) WHERE sku <> ''`,
	`CREATE INDEX IF NOT EXISTS products_parent_idx ON products (parent_id)`,
	`CREATE TABLE IF NOT EXISTS product_lookup (
		product_id BIGINT PRIMARY KEY REFERENCES products (id) ON DELETE CASCADE,
		sku TEXT NOT NULL DEFAULT '',
		min_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		stock_status TEXT NOT NULL DEFAULT 'instock',
		tax_status TEXT NOT NULL DEFAULT 'taxable',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		object_type TEXT NOT NULL,
		object_id BIGINT,
		old_value TEXT,
		new_value TEXT,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_created_idx ON audit_logs (created_at)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_action_idx ON audit_logs (action)`,
}

func bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
