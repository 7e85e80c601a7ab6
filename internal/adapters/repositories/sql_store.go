package repositories

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/db"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"time"
)

// SQLStore implements ports.Store on PostgreSQL or SQLite.
type SQLStore struct {
	DB *db.DB
}

func NewSQLStore(conn *db.DB) *SQLStore {
	return &SQLStore{DB: conn}
}

func (s *SQLStore) WithTx(ctx context.Context, fn func(tx ports.Tx) error) (err error) {
	defer obs.Time(ctx, "store.tx")(&err)

	if s.DB == nil {
		return errors.New("sql store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store tx: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqlTx{tx: tx, db: s.DB}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store tx: commit: %w", err)
	}
	return nil
}

func (s *SQLStore) GetDriver(ctx context.Context, id int64) (_ *domain.Driver, err error) {
	defer obs.Time(ctx, "store.GetDriver")(&err)

	q := s.DB.Q(`SELECT ` + driverColumns + ` FROM drivers d WHERE d.id = ?;`)
	d, err := scanDriver(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get driver %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver %d: %w", id, err)
	}
	return d, nil
}

// List orders, optionally filtered by status, oldest first.
func (s *SQLStore) ListOrders(ctx context.Context, status *domain.OrderStatus) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "store.ListOrders")(&err)

	query := `
	SELECT ` + orderColumns + `, ` + customerColumns + `
	FROM orders o
	LEFT JOIN customers c ON c.id = o.customer_id
	`
	args := []any{}
	if status != nil {
		query += ` WHERE o.status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY o.id;`

	rows, err := s.DB.QueryContext(ctx, s.DB.Q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	orders, err := collectOrders(rows, true)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *SQLStore) LatestRoute(ctx context.Context, driverID int64) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "store.LatestRoute")(&err)

	q := s.DB.Q(`
	SELECT ` + routeColumns + `
	FROM routes r
	WHERE r.driver_id = ?
	ORDER BY r.id DESC
	LIMIT 1;
	`)
	r, err := scanRoute(s.DB.QueryRowContext(ctx, q, driverID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest route of driver %d: %w", driverID, err)
	}

	r.Points, err = loadPoints(ctx, s.DB, s.DB.Q(pointsQuery), r.ID)
	if err != nil {
		return nil, fmt.Errorf("latest route of driver %d: %w", driverID, err)
	}
	return r, nil
}

func (s *SQLStore) RouteOrders(ctx context.Context, routeID int64) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "store.RouteOrders")(&err)

	q := s.DB.Q(`
	SELECT ` + orderColumns + `, ` + customerColumns + `
	FROM route_points p
	JOIN orders o ON o.id = p.order_id
	LEFT JOIN customers c ON c.id = o.customer_id
	WHERE p.route_id = ?
	ORDER BY p.seq;
	`)
	rows, err := s.DB.QueryContext(ctx, q, routeID)
	if err != nil {
		return nil, fmt.Errorf("route orders %d: query: %w", routeID, err)
	}
	orders, err := collectOrders(rows, true)
	if err != nil {
		return nil, fmt.Errorf("route orders %d: %w", routeID, err)
	}
	return orders, nil
}

// Delivered orders across all of the driver's routes, newest order first.
func (s *SQLStore) DeliveredOrders(ctx context.Context, driverID int64) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "store.DeliveredOrders")(&err)

	q := s.DB.Q(`
	SELECT ` + orderColumns + `, ` + customerColumns + `
	FROM orders o
	JOIN routes r ON r.id = o.route_id
	LEFT JOIN customers c ON c.id = o.customer_id
	WHERE r.driver_id = ? AND o.status = 'delivered'
	ORDER BY o.id DESC;
	`)
	rows, err := s.DB.QueryContext(ctx, q, driverID)
	if err != nil {
		return nil, fmt.Errorf("delivered orders of driver %d: query: %w", driverID, err)
	}
	orders, err := collectOrders(rows, true)
	if err != nil {
		return nil, fmt.Errorf("delivered orders of driver %d: %w", driverID, err)
	}
	return orders, nil
}

func (s *SQLStore) CreateIncident(ctx context.Context, inc *domain.Incident) (err error) {
	defer obs.Time(ctx, "store.CreateIncident")(&err)

	if inc.ReportedAt.IsZero() {
		inc.ReportedAt = time.Now().UTC()
	}

	q := s.DB.Q(`
	INSERT INTO incidents (driver_id, kind, description, reported_at)
	VALUES (?, ?, ?, ?)
	RETURNING id;
	`)
	if err := s.DB.QueryRowContext(ctx, q, inc.DriverID, inc.Kind, inc.Description, inc.ReportedAt).Scan(&inc.ID); err != nil {
		return fmt.Errorf("create incident for driver %d: %w", inc.DriverID, err)
	}
	return nil
}

var (
	_ ports.Store = (*SQLStore)(nil)
	_ ports.Tx    = (*sqlTx)(nil)
)
