package service

import (
	"context"

	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/pkg/events"
)

// publishEvent never fails the caller; the primary write has already committed.
func publishEvent(ctx context.Context, pub events.Publisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(context.WithoutCancel(ctx), events.New(eventType, data)); err != nil {
		log.Warn("EventPublisher", "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}
