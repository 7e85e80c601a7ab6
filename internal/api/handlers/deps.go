package handlers

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/services"
)

type RouteAssigner interface {
	AssignRoute(ctx context.Context, driverID int64, orderIDs []int64) (*domain.RouteSummary, error)
}

type OrderLister interface {
	ListOrders(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error)
}

type OrderStatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID int64, status string) (*services.StatusUpdate, error)
}

type DriverViews interface {
	CurrentRoute(ctx context.Context, driverID int64) (*services.DriverRoute, error)
	DeliveryHistory(ctx context.Context, driverID int64) ([]*domain.Order, error)
	ReportIncident(ctx context.Context, driverID int64, kind, description string) (*domain.Incident, error)
}
