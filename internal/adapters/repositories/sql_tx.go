package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/db"
	"errors"
	"fmt"
	"time"
)

// sqlTx implements ports.Tx. On SQLite the single pooled connection already
// serializes transactions, so ForUpdate is empty there.
type sqlTx struct {
	tx *sql.Tx
	db *db.DB
}

func (t *sqlTx) LockDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	q := t.db.Q(`SELECT `+driverColumns+` FROM drivers d WHERE d.id = ?`) + t.db.ForUpdate()

	d, err := scanDriver(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lock driver %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock driver %d: %w", id, err)
	}
	return d, nil
}

func (t *sqlTx) SetDriverStatus(ctx context.Context, id int64, status domain.DriverStatus) error {
	res, err := t.tx.ExecContext(ctx, t.db.Q(`UPDATE drivers SET status = ? WHERE id = ?;`), string(status), id)
	if err != nil {
		return fmt.Errorf("set driver %d status: %w", id, err)
	}
	return expectRows(res, 1, fmt.Sprintf("set driver %d status", id))
}

func (t *sqlTx) FindOrders(ctx context.Context, ids []int64) ([]*domain.Order, error) {
	if len(ids) == 0 {
		return []*domain.Order{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	q := t.db.Q(`SELECT `+orderColumns+` FROM orders o WHERE o.id IN (`+placeholders(len(ids))+`)`) + t.db.ForUpdate()
	rows, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find orders: query orders table: %w", err)
	}
	found, err := collectOrders(rows, false)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	byID := make(map[int64]*domain.Order, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}

	out := make([]*domain.Order, 0, len(found))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			out = append(out, o)
			delete(byID, id)
		}
	}
	return out, nil
}

func (t *sqlTx) LockOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return t.getOrder(ctx, id, t.db.ForUpdate())
}

func (t *sqlTx) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return t.getOrder(ctx, id, "")
}

func (t *sqlTx) getOrder(ctx context.Context, id int64, lock string) (*domain.Order, error) {
	q := t.db.Q(`SELECT `+orderColumns+` FROM orders o WHERE o.id = ?`) + lock

	o, err := scanOrder(t.tx.QueryRowContext(ctx, q, id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

func (t *sqlTx) AssignOrders(ctx context.Context, routeID int64, orderIDs []int64) error {
	if len(orderIDs) == 0 {
		return nil
	}

	args := make([]any, 0, len(orderIDs)+1)
	args = append(args, routeID)
	for _, id := range orderIDs {
		args = append(args, id)
	}

	q := t.db.Q(`UPDATE orders SET route_id = ?, status = 'en_route' WHERE id IN (` + placeholders(len(orderIDs)) + `);`)
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("assign orders to route %d: %w", routeID, err)
	}
	return expectRows(res, int64(len(orderIDs)), fmt.Sprintf("assign orders to route %d", routeID))
}

func (t *sqlTx) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, deliveredAt *time.Time) error {
	var at sql.NullTime
	if deliveredAt != nil {
		at = sql.NullTime{Time: *deliveredAt, Valid: true}
	}

	res, err := t.tx.ExecContext(ctx, t.db.Q(`UPDATE orders SET status = ?, delivered_at = ? WHERE id = ?;`), string(status), at, id)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	return expectRows(res, 1, fmt.Sprintf("update order %d status", id))
}

func (t *sqlTx) ActiveRoute(ctx context.Context, driverID int64) (*domain.Route, error) {
	q := t.db.Q(`
	SELECT `+routeColumns+`
	FROM routes r
	WHERE r.driver_id = ?
		AND EXISTS (
			SELECT 1 FROM orders o
			WHERE o.route_id = r.id AND o.status <> 'delivered'
		)
	ORDER BY r.id DESC
	LIMIT 1`) + t.db.ForUpdate()

	r, err := scanRoute(t.tx.QueryRowContext(ctx, q, driverID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active route of driver %d: %w", driverID, err)
	}

	r.Points, err = loadPoints(ctx, t.tx, t.db.Q(pointsQuery), r.ID)
	if err != nil {
		return nil, fmt.Errorf("active route of driver %d: %w", driverID, err)
	}
	return r, nil
}

func (t *sqlTx) CreateRoute(ctx context.Context, route *domain.Route) error {
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now().UTC()
	}

	var driverID sql.NullInt64
	if route.DriverID != nil {
		driverID = sql.NullInt64{Int64: *route.DriverID, Valid: true}
	}

	q := t.db.Q(`
	INSERT INTO routes (driver_id, distance_km, estimated_minutes, created_at)
	VALUES (?, ?, ?, ?)
	RETURNING id;
	`)
	err := t.tx.QueryRowContext(ctx, q, driverID, route.DistanceKm, route.EstimatedMinutes, route.CreatedAt).Scan(&route.ID)
	if err != nil {
		return fmt.Errorf("create route: %w", err)
	}
	return nil
}

func (t *sqlTx) AppendRoutePoints(ctx context.Context, routeID int64, points []domain.RoutePoint) ([]domain.RoutePoint, error) {
	var last int
	q := t.db.Q(`SELECT COALESCE(MAX(seq), 0) FROM route_points WHERE route_id = ?;`)
	if err := t.tx.QueryRowContext(ctx, q, routeID).Scan(&last); err != nil {
		return nil, fmt.Errorf("append route points to %d: read last seq: %w", routeID, err)
	}

	stmt, err := t.tx.PrepareContext(ctx, t.db.Q(`
	INSERT INTO route_points (route_id, seq, order_id, lat, lon)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return nil, fmt.Errorf("append route points to %d: prepare insert: %w", routeID, err)
	}
	defer stmt.Close()

	out := make([]domain.RoutePoint, 0, len(points))
	for _, p := range points {
		last++
		p.Seq = last
		lat, lon := latLon(p.Location)
		if _, err := stmt.ExecContext(ctx, routeID, p.Seq, p.OrderID, lat, lon); err != nil {
			return nil, fmt.Errorf("append route points to %d: insert order %d: %w", routeID, p.OrderID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (t *sqlTx) RouteDriverID(ctx context.Context, routeID int64) (*int64, error) {
	var driverID sql.NullInt64
	err := t.tx.QueryRowContext(ctx, t.db.Q(`SELECT driver_id FROM routes WHERE id = ?;`), routeID).Scan(&driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %d driver: %w", routeID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("route %d driver: %w", routeID, err)
	}
	if !driverID.Valid {
		return nil, nil
	}
	id := driverID.Int64
	return &id, nil
}

func (t *sqlTx) LockRoute(ctx context.Context, routeID int64) (*domain.Route, error) {
	q := t.db.Q(`SELECT `+routeColumns+` FROM routes r WHERE r.id = ?`) + t.db.ForUpdate()

	r, err := scanRoute(t.tx.QueryRowContext(ctx, q, routeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lock route %d: %w", routeID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock route %d: %w", routeID, err)
	}
	return r, nil
}

func (t *sqlTx) CountUndelivered(ctx context.Context, routeID int64) (int, error) {
	var n int
	q := t.db.Q(`SELECT COUNT(*) FROM orders WHERE route_id = ? AND status <> 'delivered';`)
	if err := t.tx.QueryRowContext(ctx, q, routeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count undelivered on route %d: %w", routeID, err)
	}
	return n, nil
}

func (t *sqlTx) CountUndeliveredForDriver(ctx context.Context, driverID int64) (int, error) {
	var n int
	q := t.db.Q(`
	SELECT COUNT(*)
	FROM orders o
	JOIN routes r ON r.id = o.route_id
	WHERE r.driver_id = ? AND o.status <> 'delivered';
	`)
	if err := t.tx.QueryRowContext(ctx, q, driverID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count undelivered for driver %d: %w", driverID, err)
	}
	return n, nil
}

func expectRows(res sql.Result, want int64, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n != want {
		return fmt.Errorf("%s: affected %d rows, want %d", op, n, want)
	}
	return nil
}
