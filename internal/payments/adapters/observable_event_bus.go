package adapters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dkovacevic/storefront/internal/events"
	"github.com/dkovacevic/storefront/internal/payments/ports"
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

func (e *ObservableEventBus) PublishPaymentInitiated(ctx context.Context, paymentID, orderID string) error {
	extra := []attribute.KeyValue{attribute.String("order.id", orderID)}
	return e.publish(ctx, "payment.initiated", paymentID, extra, func(ctx context.Context) error {
		return e.bus.PublishPaymentInitiated(ctx, paymentID, orderID)
	})
}

func (e *ObservableEventBus) PublishPaymentSettled(ctx context.Context, paymentID, settlementID string) error {
	extra := []attribute.KeyValue{attribute.String("settlement.id", settlementID)}
	return e.publish(ctx, "payment.settled", paymentID, extra, func(ctx context.Context) error {
		return e.bus.PublishPaymentSettled(ctx, paymentID, settlementID)
	})
}

func (e *ObservableEventBus) PublishPaymentFailed(ctx context.Context, paymentID, reason string) error {
	extra := []attribute.KeyValue{attribute.String("failure.reason", reason)}
	return e.publish(ctx, "payment.failed", paymentID, extra, func(ctx context.Context) error {
		return e.bus.PublishPaymentFailed(ctx, paymentID, reason)
	})
}

func (e *ObservableEventBus) publish(
	ctx context.Context,
	topic string,
	paymentID string,
	extra []attribute.KeyValue,
	fn func(ctx context.Context) error,
) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish:"+topic)
	defer span.End()

	attrs := append([]attribute.KeyValue{
		attribute.String("payment.id", paymentID),
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
