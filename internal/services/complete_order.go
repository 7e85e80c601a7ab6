package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var errOrderMoved = errors.New("order route changed while locking, retry the request")

// OrderService applies order status changes and releases drivers whose
// route has just been completed.
type OrderService struct {
	Store     ports.Store
	Publisher ports.EventPublisher
	Now       func() time.Time
}

func NewOrderService(store ports.Store, publisher ports.EventPublisher) *OrderService {
	return &OrderService{
		Store:     store,
		Publisher: publisher,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

type StatusUpdate struct {
	Order          *domain.Order
	DriverID       *int64
	DriverReleased bool
}

// routeLocks holds the rows locked for an order's route, driver first.
type routeLocks struct {
	driver  *domain.Driver
	routeID int64
}

// lockRouteOf locks the owning driver and then the route. It returns nil
// when there is nothing to lock.
func lockRouteOf(ctx context.Context, tx ports.Tx, routeID *int64) (*routeLocks, error) {
	if routeID == nil {
		return nil, nil
	}

	driverID, err := tx.RouteDriverID(ctx, *routeID)
	if err != nil {
		return nil, err
	}

	locks := &routeLocks{routeID: *routeID}
	if driverID != nil {
		if locks.driver, err = tx.LockDriver(ctx, *driverID); err != nil {
			return nil, err
		}
	}
	if _, err := tx.LockRoute(ctx, *routeID); err != nil {
		return nil, err
	}
	return locks, nil
}

// releaseLocked flips the driver to available when no undelivered order is
// left on the route nor on any other route of the driver. Callers must hold
// the locks. It reports whether it flipped.
func releaseLocked(ctx context.Context, tx ports.Tx, locks *routeLocks) (bool, error) {
	if locks == nil || locks.driver == nil || locks.driver.Status != domain.DriverEnRoute {
		return false, nil
	}

	remaining, err := tx.CountUndelivered(ctx, locks.routeID)
	if err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}

	// A finished route says nothing about the driver's newer routes.
	busy, err := tx.CountUndeliveredForDriver(ctx, locks.driver.ID)
	if err != nil {
		return false, err
	}
	if busy > 0 {
		return false, nil
	}

	if err := tx.SetDriverStatus(ctx, locks.driver.ID, domain.DriverAvailable); err != nil {
		return false, err
	}
	locks.driver.Status = domain.DriverAvailable
	return true, nil
}

// UpdateStatus changes an order's status. Marking it delivered runs the
// driver release check in the same transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (_ *StatusUpdate, err error) {
	defer obs.Time(ctx, "services.UpdateOrderStatus")(&err)

	to, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	var (
		result         StatusUpdate
		newlyDelivered bool
	)
	err = s.Store.WithTx(ctx, func(tx ports.Tx) error {
		seen, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		locks, err := lockRouteOf(ctx, tx, seen.RouteID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !sameRoute(seen.RouteID, order.RouteID) {
			return fmt.Errorf("update order status %d: %w", orderID, errOrderMoved)
		}

		if err := order.CheckTransition(to); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		newlyDelivered = to == domain.OrderDelivered && order.Status != domain.OrderDelivered
		if to == domain.OrderDelivered && order.DeliveredAt == nil {
			at := s.Now()
			order.DeliveredAt = &at
		}
		order.Status = to

		if err := tx.UpdateOrderStatus(ctx, order.ID, order.Status, order.DeliveredAt); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		result.Order = order
		if locks != nil && locks.driver != nil {
			id := locks.driver.ID
			result.DriverID = &id
		}

		if to == domain.OrderDelivered {
			released, err := releaseLocked(ctx, tx, locks)
			if err != nil {
				return fmt.Errorf("update order status: release driver: %w", err)
			}
			result.DriverReleased = released
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	if newlyDelivered {
		payload := map[string]any{"order_id": result.Order.ID}
		if result.Order.RouteID != nil {
			payload["route_id"] = *result.Order.RouteID
		}
		events = append(events, domain.Event{
			Type:       domain.EventOrderDelivered,
			Key:        strconv.FormatInt(result.Order.ID, 10),
			OccurredAt: s.Now(),
			Payload:    payload,
		})
	}
	if result.DriverReleased {
		events = append(events, releasedEvent(*result.DriverID, *result.Order.RouteID, s.Now()))
	}
	publish(ctx, s.Publisher, events...)

	return &result, nil
}

// ReleaseIfRouteComplete re-checks the route of orderID and releases its
// driver if every order on it is delivered. Orders without a route, and
// routes without a driver, are a no-op. Calling it again after a release
// reports false.
func (s *OrderService) ReleaseIfRouteComplete(ctx context.Context, orderID int64) (released bool, err error) {
	defer obs.Time(ctx, "services.ReleaseIfRouteComplete")(&err)

	var locks *routeLocks
	err = s.Store.WithTx(ctx, func(tx ports.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("release driver: %w", err)
		}

		locks, err = lockRouteOf(ctx, tx, order.RouteID)
		if err != nil {
			return fmt.Errorf("release driver: %w", err)
		}

		released, err = releaseLocked(ctx, tx, locks)
		if err != nil {
			return fmt.Errorf("release driver: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if released {
		publish(ctx, s.Publisher, releasedEvent(locks.driver.ID, locks.routeID, s.Now()))
	}
	return released, nil
}

func releasedEvent(driverID, routeID int64, at time.Time) domain.Event {
	return domain.Event{
		Type:       domain.EventDriverReleased,
		Key:        strconv.FormatInt(driverID, 10),
		OccurredAt: at,
		Payload: map[string]any{
			"driver_id": driverID,
			"route_id":  routeID,
		},
	}
}

func sameRoute(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
