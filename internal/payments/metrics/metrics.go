package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	paymentsInitiatedTotal metric.Int64Counter
	paymentsSettledTotal   metric.Int64Counter
	webhookDuration        metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.paymentsInitiatedTotal, err = meter.Int64Counter(
		"payments_initiated_total",
		metric.WithDescription("Total number of payment attempts opened"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payments_initiated_total counter: %w", err)
	}

	m.paymentsSettledTotal, err = meter.Int64Counter(
		"payments_settled_total",
		metric.WithDescription("Total number of payment attempts settled by gateway callbacks"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payments_settled_total counter: %w", err)
	}

	m.webhookDuration, err = meter.Float64Histogram(
		"payment_webhook_duration_seconds",
		metric.WithDescription("Duration of webhook reconciliation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_webhook_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordPaymentInitiated(ctx context.Context) {
	m.paymentsInitiatedTotal.Add(ctx, 1)
}

func (m *Metrics) RecordPaymentSettled(ctx context.Context, status string) {
	m.paymentsSettledTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordWebhookProcessed(ctx context.Context, durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.webhookDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("status", status),
	))
}
