package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dkovacevic/storefront/internal/events"
	"github.com/dkovacevic/storefront/internal/orders/ports"
	"github.com/dkovacevic/storefront/internal/telemetry"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *events.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *events.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.created", orderID, nil, func(ctx context.Context) error {
		return e.bus.PublishOrderCreated(ctx, orderID)
	})
}

func (e *ObservableEventBus) PublishOrderPaid(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.paid", orderID, nil, func(ctx context.Context) error {
		return e.bus.PublishOrderPaid(ctx, orderID)
	})
}

func (e *ObservableEventBus) PublishOrderFailed(ctx context.Context, orderID string, reason string) error {
	extra := []attribute.KeyValue{attribute.String("failure.reason", reason)}
	return e.publish(ctx, "order.failed", orderID, extra, func(ctx context.Context) error {
		return e.bus.PublishOrderFailed(ctx, orderID, reason)
	})
}

func (e *ObservableEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.cancelled", orderID, nil, func(ctx context.Context) error {
		return e.bus.PublishOrderCancelled(ctx, orderID)
	})
}

func (e *ObservableEventBus) publish(
	ctx context.Context,
	topic string,
	orderID string,
	extra []attribute.KeyValue,
	fn func(ctx context.Context) error,
) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish:"+topic)
	defer span.End()

	attrs := append([]attribute.KeyValue{
		attribute.String("order.id", orderID),
		attribute.String("event.type", topic),
		attribute.String("topic", topic),
	}, extra...)
	telemetry.AddSpanAttributes(span, attrs...)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, topic, duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
