package domain

import (
	"strings"
	"time"
)

// Placeholder estimates stored on newly created routes. Merges keep
// whatever the route already carries.
const (
	PlaceholderDistanceKm       = 10.0
	PlaceholderEstimatedMinutes = 60
)

// MaxOrdersPerAssignment caps the order ids accepted by one assignment.
const MaxOrdersPerAssignment = 500

// Represents one delivery point appended to a route.
// Seq is the position in the route's point list; points are only appended.
type RoutePoint struct {
	Seq      int
	OrderID  int64
	Location *Coordinates
}

// Represents a driver's delivery route.
type Route struct {
	ID               int64
	DriverID         *int64
	DistanceKm       float64
	EstimatedMinutes int
	CreatedAt        time.Time
	Points           []RoutePoint
}

// PointsText renders the point list in its textual form,
// one "(lat, lon); " entry per point.
func (r *Route) PointsText() string {
	var b strings.Builder
	for _, p := range r.Points {
		if p.Location == nil {
			b.WriteString("(None, None); ")
			continue
		}
		b.WriteString(p.Location.String())
		b.WriteString("; ")
	}
	return b.String()
}

// Last returns the most recently appended point, if any.
func (r *Route) Last() (RoutePoint, bool) {
	if len(r.Points) == 0 {
		return RoutePoint{}, false
	}
	return r.Points[len(r.Points)-1], true
}

// Result of a route assignment.
type RouteSummary struct {
	RouteID  int64
	Merged   bool
	Message  string
	OrderIDs []int64
}
