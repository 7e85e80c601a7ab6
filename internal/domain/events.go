package domain

import "time"

const (
	EventRouteAssigned  = "route.assigned"
	EventOrderDelivered = "order.delivered"
	EventDriverReleased = "driver.released"
)

// Event is a domain fact published after its transaction commits.
type Event struct {
	Type       string         `json:"type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}
