package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderEnRoute   OrderStatus = "en_route"
	OrderDelivered OrderStatus = "delivered"
)

// ParseOrderStatus validates a status coming from outside the service.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderEnRoute, OrderDelivered:
		return st, nil
	default:
		return "", fmt.Errorf("unknown order status %q: %w", s, ErrInvalidRequest)
	}
}

// Represents a customer order awaiting or in delivery.
// Location is the order's own delivery point and may differ from the
// customer's stored coordinate; nil means the order has no coordinate.
type Order struct {
	ID          int64
	CustomerID  int64
	Customer    *Customer
	Address     string
	Location    *Coordinates
	Status      OrderStatus
	RouteID     *int64
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

func (o *Order) Delivered() bool { return o.Status == OrderDelivered }

// CheckTransition enforces the order lifecycle for a status change.
// Delivered is final, en_route requires a route, pending requires none.
func (o *Order) CheckTransition(to OrderStatus) error {
	if o.Status == OrderDelivered && to != OrderDelivered {
		return fmt.Errorf("order %d is already delivered: %w", o.ID, ErrInvalidRequest)
	}

	switch to {
	case OrderEnRoute, OrderDelivered:
		if o.RouteID == nil {
			return fmt.Errorf("order %d has no route, cannot become %s: %w", o.ID, to, ErrInvalidRequest)
		}
	case OrderPending:
		if o.RouteID != nil {
			return fmt.Errorf("order %d is on route %d, cannot become pending: %w", o.ID, *o.RouteID, ErrInvalidRequest)
		}
	}
	return nil
}
