package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"fmt"
	"strconv"
	"time"
)

// RouteAssigner sequences new orders for a driver and merges them into the
// driver's active route, or opens a new route when there is none.
type RouteAssigner struct {
	Store     ports.Store
	Publisher ports.EventPublisher
	// Start of the walk for new routes and for routes whose last point has no coordinate.
	Depot domain.Coordinates
	Now   func() time.Time
}

func NewRouteAssigner(store ports.Store, publisher ports.EventPublisher, depot domain.Coordinates) *RouteAssigner {
	return &RouteAssigner{
		Store:     store,
		Publisher: publisher,
		Depot:     depot,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// AssignRoute runs in a single transaction holding the driver's row lock.
// Unknown order ids are dropped; if none remain the request is invalid.
func (a *RouteAssigner) AssignRoute(ctx context.Context, driverID int64, orderIDs []int64) (_ *domain.RouteSummary, err error) {
	defer obs.Time(ctx, "services.AssignRoute")(&err)

	if driverID <= 0 {
		return nil, fmt.Errorf("assign route: invalid driver id %d: %w", driverID, domain.ErrInvalidRequest)
	}

	ids := uniqueIDs(orderIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("assign route: order ids must not be empty: %w", domain.ErrInvalidRequest)
	}
	if len(ids) > domain.MaxOrdersPerAssignment {
		return nil, fmt.Errorf("assign route: at most %d orders per assignment, got %d: %w",
			domain.MaxOrdersPerAssignment, len(ids), domain.ErrInvalidRequest)
	}

	var summary *domain.RouteSummary
	err = a.Store.WithTx(ctx, func(tx ports.Tx) error {
		if _, err := tx.LockDriver(ctx, driverID); err != nil {
			return fmt.Errorf("assign route: %w", err)
		}

		orders, err := tx.FindOrders(ctx, ids)
		if err != nil {
			return fmt.Errorf("assign route: %w", err)
		}
		if len(orders) == 0 {
			return fmt.Errorf("assign route: none of the orders exist: %w", domain.ErrInvalidRequest)
		}
		for _, o := range orders {
			if o.Status != domain.OrderPending {
				return fmt.Errorf("assign route: order %d is %s, only pending orders can be routed: %w",
					o.ID, o.Status, domain.ErrInvalidRequest)
			}
		}

		active, err := tx.ActiveRoute(ctx, driverID)
		if err != nil {
			return fmt.Errorf("assign route: %w", err)
		}

		sequence := SequenceOrders(a.startFor(active), orders)

		route := active
		if route == nil {
			route = &domain.Route{
				DriverID:         &driverID,
				DistanceKm:       domain.PlaceholderDistanceKm,
				EstimatedMinutes: domain.PlaceholderEstimatedMinutes,
				CreatedAt:        a.Now(),
			}
			if err := tx.CreateRoute(ctx, route); err != nil {
				return fmt.Errorf("assign route: %w", err)
			}
		}

		points := make([]domain.RoutePoint, len(sequence))
		sequenced := make([]int64, len(sequence))
		for i, o := range sequence {
			points[i] = domain.RoutePoint{OrderID: o.ID, Location: o.Location}
			sequenced[i] = o.ID
		}

		if _, err := tx.AppendRoutePoints(ctx, route.ID, points); err != nil {
			return fmt.Errorf("assign route: %w", err)
		}
		if err := tx.SetDriverStatus(ctx, driverID, domain.DriverEnRoute); err != nil {
			return fmt.Errorf("assign route: %w", err)
		}
		if err := tx.AssignOrders(ctx, route.ID, sequenced); err != nil {
			return fmt.Errorf("assign route: %w", err)
		}

		summary = &domain.RouteSummary{
			RouteID:  route.ID,
			Merged:   active != nil,
			Message:  summaryMessage(route.ID, active != nil),
			OrderIDs: sequenced,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, a.Publisher, domain.Event{
		Type:       domain.EventRouteAssigned,
		Key:        strconv.FormatInt(driverID, 10),
		OccurredAt: a.Now(),
		Payload: map[string]any{
			"route_id":  summary.RouteID,
			"driver_id": driverID,
			"order_ids": summary.OrderIDs,
			"merged":    summary.Merged,
		},
	})

	return summary, nil
}

// startFor picks where the walk begins: the last point of the active route,
// or the depot when there is no route or that point has no coordinate.
func (a *RouteAssigner) startFor(active *domain.Route) domain.Coordinates {
	if active == nil {
		return a.Depot
	}
	last, ok := active.Last()
	if !ok || last.Location == nil {
		return a.Depot
	}
	return *last.Location
}

func summaryMessage(routeID int64, merged bool) string {
	if merged {
		return fmt.Sprintf("Orders added to existing route #%d.", routeID)
	}
	return fmt.Sprintf("New route #%d created.", routeID)
}

// uniqueIDs drops duplicates keeping the first occurrence.
func uniqueIDs(in []int64) []int64 {
	seen := make(map[int64]struct{}, len(in))
	out := make([]int64, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
