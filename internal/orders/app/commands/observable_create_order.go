package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/dkovacevic/storefront/internal/orders/domain"
	"github.com/dkovacevic/storefront/internal/orders/metrics"
	"github.com/dkovacevic/storefront/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordOrderCreationDuration(ctx, duration)
		o.metrics.RecordOrderCreated(ctx, success)
	}()

	o.logger.InfoContext(ctx, "placing order",
		"user_id", cmd.UserID,
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to place order",
			"error", err,
			"user_id", cmd.UserID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.user_id", order.UserID),
		attribute.String("order.total_amount", order.TotalAmount.String()),
		attribute.Int("order.item_count", len(order.Items)),
		attribute.String("order.status", string(order.Status)),
	)

	o.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount.String(),
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
