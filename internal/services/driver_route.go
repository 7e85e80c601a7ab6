package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"fmt"
	"strings"
	"time"
)

const (
	MsgNoRoutes       = "no routes assigned"
	MsgRouteCompleted = "route completed"
)

// DriverService serves the driver-facing views: current route, delivery
// history and incident reports.
type DriverService struct {
	Store ports.Store
	Depot domain.Coordinates
	Now   func() time.Time
}

func NewDriverService(store ports.Store, depot domain.Coordinates) *DriverService {
	return &DriverService{
		Store: store,
		Depot: depot,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// What a driver sees for their latest route. Message is set instead of
// Orders when there is nothing left to deliver.
type DriverRoute struct {
	Driver  *domain.Driver
	RouteID *int64
	Message string
	Origin  domain.Coordinates
	Orders  []*domain.Order
}

func (s *DriverService) CurrentRoute(ctx context.Context, driverID int64) (_ *DriverRoute, err error) {
	defer obs.Time(ctx, "services.CurrentRoute")(&err)

	driver, err := s.Store.GetDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("current route: %w", err)
	}

	view := &DriverRoute{Driver: driver, Origin: s.Depot}

	route, err := s.Store.LatestRoute(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("current route: %w", err)
	}
	if route == nil {
		view.Message = MsgNoRoutes
		return view, nil
	}
	view.RouteID = &route.ID

	orders, err := s.Store.RouteOrders(ctx, route.ID)
	if err != nil {
		return nil, fmt.Errorf("current route: %w", err)
	}

	pending := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if !o.Delivered() {
			pending = append(pending, o)
		}
	}
	if len(pending) == 0 {
		view.Message = MsgRouteCompleted
		return view, nil
	}

	view.Orders = pending
	return view, nil
}

func (s *DriverService) DeliveryHistory(ctx context.Context, driverID int64) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "services.DeliveryHistory")(&err)

	if _, err := s.Store.GetDriver(ctx, driverID); err != nil {
		return nil, fmt.Errorf("delivery history: %w", err)
	}

	orders, err := s.Store.DeliveredOrders(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("delivery history: %w", err)
	}
	return orders, nil
}

func (s *DriverService) ReportIncident(ctx context.Context, driverID int64, kind, description string) (_ *domain.Incident, err error) {
	defer obs.Time(ctx, "services.ReportIncident")(&err)

	kind = strings.TrimSpace(kind)
	description = strings.TrimSpace(description)
	if kind == "" || description == "" {
		return nil, fmt.Errorf("report incident: kind and description are required: %w", domain.ErrInvalidRequest)
	}

	if _, err := s.Store.GetDriver(ctx, driverID); err != nil {
		return nil, fmt.Errorf("report incident: %w", err)
	}

	inc := &domain.Incident{
		DriverID:    driverID,
		Kind:        kind,
		Description: description,
		ReportedAt:  s.Now(),
	}
	if err := s.Store.CreateIncident(ctx, inc); err != nil {
		return nil, fmt.Errorf("report incident: %w", err)
	}
	return inc, nil
}
