package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/platform/db"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type DriverSeed struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	License      string `json:"license"`
	Phone        string `json:"phone"`
	VehiclePlate string `json:"vehicle_plate"`
}

type CustomerSeed struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

type OrderSeed struct {
	ID         int64    `json:"id"`
	CustomerID int64    `json:"customer_id"`
	Address    string   `json:"address"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
}

type Seed struct {
	Drivers   []DriverSeed   `json:"drivers"`
	Customers []CustomerSeed `json:"customers"`
	Orders    []OrderSeed    `json:"orders"`
}

func (s *Seed) validate() error {
	for i, d := range s.Drivers {
		if d.ID <= 0 {
			return fmt.Errorf("driver at index %d: invalid id %d", i+1, d.ID)
		}
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("driver %d: name cannot be empty", d.ID)
		}
	}

	customers := make(map[int64]struct{}, len(s.Customers))
	for i, c := range s.Customers {
		if c.ID <= 0 {
			return fmt.Errorf("customer at index %d: invalid id %d", i+1, c.ID)
		}
		customers[c.ID] = struct{}{}
	}

	for i, o := range s.Orders {
		if o.ID <= 0 {
			return fmt.Errorf("order at index %d: invalid id %d", i+1, o.ID)
		}
		if _, ok := customers[o.CustomerID]; !ok {
			return fmt.Errorf("order %d: unknown customer %d", o.ID, o.CustomerID)
		}
		if (o.Lat == nil) != (o.Lon == nil) {
			return fmt.Errorf("order %d: lat and lon must be set together", o.ID)
		}
	}
	return nil
}

// Populate drivers, customers and pending orders from a JSON file.
// Rows that already exist are left untouched.
func SeedFromJSON(ctx context.Context, conn *db.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed: parse json: %w", err)
	}
	if err := data.validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range data.Drivers {
		_, err := tx.ExecContext(ctx, conn.Q(`
		INSERT INTO drivers (id, name, license, phone, vehicle_plate, status)
		VALUES (?, ?, ?, ?, ?, 'available')
		ON CONFLICT (id) DO NOTHING;
		`), d.ID, d.Name, d.License, d.Phone, d.VehiclePlate)
		if err != nil {
			return fmt.Errorf("seed: insert driver id=%d: %w", d.ID, err)
		}
	}

	for _, c := range data.Customers {
		_, err := tx.ExecContext(ctx, conn.Q(`
		INSERT INTO customers (id, name, phone, address, lat, lon)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING;
		`), c.ID, c.Name, c.Phone, c.Address, nullFloat(c.Lat), nullFloat(c.Lon))
		if err != nil {
			return fmt.Errorf("seed: insert customer id=%d: %w", c.ID, err)
		}
	}

	now := time.Now().UTC()
	for _, o := range data.Orders {
		_, err := tx.ExecContext(ctx, conn.Q(`
		INSERT INTO orders (id, customer_id, address, lat, lon, status, created_at)
		VALUES (?, ?, ?, ?, ?, 'pending', ?)
		ON CONFLICT (id) DO NOTHING;
		`), o.ID, o.CustomerID, o.Address, nullFloat(o.Lat), nullFloat(o.Lon), now)
		if err != nil {
			return fmt.Errorf("seed: insert order id=%d: %w", o.ID, err)
		}
	}

	// Explicit ids leave Postgres sequences behind.
	if conn.Driver() == db.DriverPostgres {
		for _, table := range []string{"drivers", "customers", "orders"} {
			q := fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false);`,
				table, table,
			)
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return fmt.Errorf("seed: reset %s sequence: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
