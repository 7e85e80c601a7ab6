package repositories

import (
	"context"
	"delivery-dispatch-service/internal/platform/db"
	"errors"
	"fmt"
)

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS drivers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		license TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		vehicle_plate TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'en_route'))
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		lat REAL,
		lon REAL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		driver_id INTEGER REFERENCES drivers(id) ON DELETE RESTRICT,
		distance_km REAL NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		address TEXT NOT NULL DEFAULT '',
		lat REAL,
		lon REAL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'en_route', 'delivered')),
		route_id INTEGER REFERENCES routes(id),
		created_at TIMESTAMP NOT NULL,
		delivered_at TIMESTAMP
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS route_points (
		route_id INTEGER NOT NULL REFERENCES routes(id),
		seq INTEGER NOT NULL,
		order_id INTEGER NOT NULL REFERENCES orders(id),
		lat REAL,
		lon REAL,
		PRIMARY KEY (route_id, seq)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS incidents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		driver_id INTEGER NOT NULL REFERENCES drivers(id),
		kind TEXT NOT NULL,
		description TEXT NOT NULL,
		reported_at TIMESTAMP NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_orders_route_status ON orders(route_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_driver ON routes(driver_id, id);`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS drivers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		license TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		vehicle_plate TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'en_route'))
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS routes (
		id BIGSERIAL PRIMARY KEY,
		driver_id BIGINT REFERENCES drivers(id) ON DELETE RESTRICT,
		distance_km DOUBLE PRECISION NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		address TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'en_route', 'delivered')),
		route_id BIGINT REFERENCES routes(id),
		created_at TIMESTAMPTZ NOT NULL,
		delivered_at TIMESTAMPTZ
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS route_points (
		route_id BIGINT NOT NULL REFERENCES routes(id),
		seq INTEGER NOT NULL,
		order_id BIGINT NOT NULL REFERENCES orders(id),
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		PRIMARY KEY (route_id, seq)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS incidents (
		id BIGSERIAL PRIMARY KEY,
		driver_id BIGINT NOT NULL REFERENCES drivers(id),
		kind TEXT NOT NULL,
		description TEXT NOT NULL,
		reported_at TIMESTAMPTZ NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_orders_route_status ON orders(route_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_driver ON routes(driver_id, id);`,
}

// Initialize the database schema for the connection's dialect.
func InitSchema(ctx context.Context, conn *db.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	statements := sqliteSchema
	if conn.Driver() == db.DriverPostgres {
		statements = postgresSchema
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
