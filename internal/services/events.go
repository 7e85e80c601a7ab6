package services

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

// publishTimeout bounds how long a request waits on the broker after commit.
const publishTimeout = 2 * time.Second

// publish sends committed events. Failures are logged, not returned.
// Cancellation of ctx is ignored; publishTimeout bounds the call instead.
func publish(ctx context.Context, p ports.EventPublisher, events ...domain.Event) {
	if p == nil || len(events) == 0 {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(pubCtx, events...); err != nil {
		types := make([]string, len(events))
		for i, e := range events {
			types[i] = e.Type
		}
		zap.L().Error("publish events failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Strings("types", types),
			zap.Error(err),
		)
	}
}
