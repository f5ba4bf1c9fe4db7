package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_number TEXT NOT NULL UNIQUE,
		order_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'new',
		source_filename TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		row_number INTEGER NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		unit TEXT NOT NULL DEFAULT 'шт',
		code TEXT,
		status TEXT NOT NULL DEFAULT 'pending'
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items(order_id)`,
	`CREATE TABLE IF NOT EXISTS filter_words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		word TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		order_number VARCHAR(100) NOT NULL UNIQUE,
		order_date DATE NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'new',
		source_filename VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		row_number INTEGER NOT NULL,
		name VARCHAR(500) NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		unit VARCHAR(50) NOT NULL DEFAULT 'шт',
		code VARCHAR(100),
		status VARCHAR(50) NOT NULL DEFAULT 'pending'
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items(order_id)`,
	`CREATE TABLE IF NOT EXISTS filter_words (
		id BIGSERIAL PRIMARY KEY,
		word VARCHAR(200) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates missing tables and indexes.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if d.dialect == dialect.Postgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := d.SQL().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	d.logger.Info("db.migrate.ok", "dialect", d.dialect, "statements", len(stmts))
	return nil
}
