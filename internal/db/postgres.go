package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Connect opens the pool, checks it and brings the schema up to date.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse DATABASE_URL")
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres connection failed")
	}

	zap.S().Infow("connected to postgres", "host", config.ConnConfig.Host, "database", config.ConnConfig.Database)

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "initialize schema")
	}

	return pool, nil
}

// schema is applied in order; every statement is idempotent.
var schema = []struct {
	name string
	sql  string
}{
	// -------------------------------
	// USERS
	// -------------------------------
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'STAFF',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},

	// -------------------------------
	// CATALOG
	// -------------------------------
	{"stores", `
		CREATE TABLE IF NOT EXISTS stores (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			address VARCHAR(500) NOT NULL DEFAULT '',
			phone VARCHAR(50) NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"categories", `
		CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			icon VARCHAR(50) NOT NULL DEFAULT ''
		)
	`},
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category_id INT NOT NULL REFERENCES categories(id),
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			image VARCHAR(500) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		)
	`},
	{"store_products", `
		CREATE TABLE IF NOT EXISTS store_products (
			store_id INT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
			product_id INT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (store_id, product_id)
		)
	`},
	{"combos", `
		CREATE TABLE IF NOT EXISTS combos (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			image VARCHAR(500) NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			selection_spec JSONB
		)
	`},

	// -------------------------------
	// COMBO BUILDER DRAFTS
	// -------------------------------
	{"combo_drafts", `
		CREATE TABLE IF NOT EXISTS combo_drafts (
			session_id VARCHAR(64) NOT NULL,
			combo_id INT NOT NULL,
			current_step INT NOT NULL,
			selections JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (session_id, combo_id)
		)
	`},
	{"combo_drafts_updated_at", `
		CREATE INDEX IF NOT EXISTS combo_drafts_updated_at_idx
		ON combo_drafts (updated_at)
	`},

	// -------------------------------
	// ORDERS
	// -------------------------------
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			store_id INT NOT NULL REFERENCES stores(id),
			customer_name VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(50) NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			source VARCHAR(20) NOT NULL DEFAULT 'web',
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			total NUMERIC(12,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"order_items", `
		CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			price NUMERIC(12,2) NOT NULL,
			quantity INT NOT NULL CHECK (quantity > 0),
			is_combo BOOLEAN NOT NULL DEFAULT FALSE,
			combo_details JSONB
		)
	`},
	{"orders_store_status", `
		CREATE INDEX IF NOT EXISTS orders_store_status_idx
		ON orders (store_id, status, created_at DESC)
	`},
}

// InitSchema creates or updates the database schema
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			return errors.Wrapf(err, "schema step %s", stmt.name)
		}
	}

	zap.S().Infow("schema initialized", "steps", len(schema))
	return nil
}
