package observability

import (
	"context"

	"go.uber.org/zap"
)

// EventBus implements the domain EventPublisher interface on top of the context logger.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus (DI constructor).
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e.logger == nil {
		return
	}

	fields := contextFields(ctx)
	fields = append(fields, zap.String("event_type", eventType))
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}

	e.logger.Info("event published", fields...)
}
