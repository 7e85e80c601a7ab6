package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"fmt"
	"strings"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	driverColumns   = `d.id, d.name, d.license, d.phone, d.vehicle_plate, d.status`
	routeColumns    = `r.id, r.driver_id, r.distance_km, r.estimated_minutes, r.created_at`
	orderColumns    = `o.id, o.customer_id, o.address, o.lat, o.lon, o.status, o.route_id, o.created_at, o.delivered_at`
	customerColumns = `c.name, c.phone, c.address`
)

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var status string
	if err := row.Scan(&d.ID, &d.Name, &d.License, &d.Phone, &d.VehiclePlate, &status); err != nil {
		return nil, err
	}
	d.Status = domain.DriverStatus(status)
	return &d, nil
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	var r domain.Route
	var driverID sql.NullInt64
	if err := row.Scan(&r.ID, &driverID, &r.DistanceKm, &r.EstimatedMinutes, &r.CreatedAt); err != nil {
		return nil, err
	}
	if driverID.Valid {
		id := driverID.Int64
		r.DriverID = &id
	}
	return &r, nil
}

// scanOrder reads orderColumns, followed by customerColumns when withCustomer is set.
func scanOrder(row rowScanner, withCustomer bool) (*domain.Order, error) {
	var (
		o           domain.Order
		lat, lon    sql.NullFloat64
		status      string
		routeID     sql.NullInt64
		deliveredAt sql.NullTime
		name, phone sql.NullString
		address     sql.NullString
	)

	dest := []any{&o.ID, &o.CustomerID, &o.Address, &lat, &lon, &status, &routeID, &o.CreatedAt, &deliveredAt}
	if withCustomer {
		dest = append(dest, &name, &phone, &address)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	o.Location = coordinates(lat, lon)
	if routeID.Valid {
		id := routeID.Int64
		o.RouteID = &id
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	if withCustomer && name.Valid {
		o.Customer = &domain.Customer{
			ID:      o.CustomerID,
			Name:    name.String,
			Phone:   phone.String,
			Address: address.String,
		}
	}
	return &o, nil
}

func coordinates(lat, lon sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
}

func latLon(c *domain.Coordinates) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lon, Valid: true}
}

func collectOrders(rows *sql.Rows, withCustomer bool) ([]*domain.Order, error) {
	defer rows.Close()

	orders := make([]*domain.Order, 0, 16)
	for rows.Next() {
		o, err := scanOrder(rows, withCustomer)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order row iteration: %w", err)
	}
	return orders, nil
}

func loadPoints(ctx context.Context, q querier, query string, routeID int64) ([]domain.RoutePoint, error) {
	rows, err := q.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("query route_points table: %w", err)
	}
	defer rows.Close()

	points := make([]domain.RoutePoint, 0, 16)
	for rows.Next() {
		var p domain.RoutePoint
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&p.Seq, &p.OrderID, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan route point: %w", err)
		}
		p.Location = coordinates(lat, lon)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("route point iteration: %w", err)
	}
	return points, nil
}

const pointsQuery = `
	SELECT seq, order_id, lat, lon
	FROM route_points
	WHERE route_id = ?
	ORDER BY seq;
	`

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
