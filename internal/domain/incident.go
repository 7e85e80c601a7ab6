package domain

import "time"

// Represents a problem reported by a driver while on the road.
type Incident struct {
	ID          int64
	DriverID    int64
	Kind        string
	Description string
	ReportedAt  time.Time
}
