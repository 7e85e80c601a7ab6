package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"time"
)

// Port: persisted dispatch state (drivers, customers, orders, routes).
type Store interface {
	// Run fn in one transaction. Any error from fn rolls everything back.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	ListOrders(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error)
	// Most recently created route of the driver with its points, or nil.
	LatestRoute(ctx context.Context, driverID int64) (*domain.Route, error)
	// Orders on a route in point order, with customer contact details.
	RouteOrders(ctx context.Context, routeID int64) ([]*domain.Order, error)
	DeliveredOrders(ctx context.Context, driverID int64) ([]*domain.Order, error)
	CreateIncident(ctx context.Context, inc *domain.Incident) error
}

// Tx is the transactional view of the Store. Lock* methods take a row lock
// where the database supports one; callers lock drivers before routes and
// routes before orders.
type Tx interface {
	LockDriver(ctx context.Context, id int64) (*domain.Driver, error)
	SetDriverStatus(ctx context.Context, id int64, status domain.DriverStatus) error

	// Return the orders that exist among ids, in the order of ids. Missing ids are skipped.
	FindOrders(ctx context.Context, ids []int64) ([]*domain.Order, error)
	LockOrder(ctx context.Context, id int64) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	AssignOrders(ctx context.Context, routeID int64, orderIDs []int64) error
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, deliveredAt *time.Time) error

	// Highest-id route of the driver that still has a non-delivered order,
	// locked and with its points loaded. Nil when the driver has none.
	ActiveRoute(ctx context.Context, driverID int64) (*domain.Route, error)
	CreateRoute(ctx context.Context, route *domain.Route) error
	// Append points after the route's current last point. Seq is assigned here.
	AppendRoutePoints(ctx context.Context, routeID int64, points []domain.RoutePoint) ([]domain.RoutePoint, error)
	// Owning driver of a route without locking; nil when the route has no driver.
	RouteDriverID(ctx context.Context, routeID int64) (*int64, error)
	LockRoute(ctx context.Context, routeID int64) (*domain.Route, error)
	CountUndelivered(ctx context.Context, routeID int64) (int, error)
	// Non-delivered orders across every route of the driver.
	CountUndeliveredForDriver(ctx context.Context, driverID int64) (int, error)
}
