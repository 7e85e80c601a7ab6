package messaging

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"

	"go.uber.org/zap"
)

// LogPublisher records events in the log. Used when no brokers are configured.
type LogPublisher struct {
	Logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger.Named("events")}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	for _, e := range events {
		p.Logger.Info("domain event",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("type", e.Type),
			zap.String("key", e.Key),
			zap.Time("occurred_at", e.OccurredAt),
			zap.Any("payload", e.Payload),
		)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
