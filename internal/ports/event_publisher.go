package ports

import (
	"context"
	"delivery-dispatch-service/internal/domain"
)

// Port: outbound domain events. Called only after the producing transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
