// Package events publishes order and payment lifecycle events. Only the
// logging publisher exists today; a broker-backed one slots in behind the
// same ports.
package events

import (
	"context"
	"log/slog"
)

// NoopBus logs lifecycle events without delivering them anywhere. Useful for
// local dev before a real broker is wired.
type NoopBus struct{}

// NewNoopBus returns a new no-op event publisher.
func NewNoopBus() *NoopBus {
	return &NoopBus{}
}

func (n *NoopBus) PublishOrderCreated(_ context.Context, orderID string) error {
	slog.Debug("event::order_created", "order_id", orderID)
	return nil
}

func (n *NoopBus) PublishOrderPaid(_ context.Context, orderID string) error {
	slog.Debug("event::order_paid", "order_id", orderID)
	return nil
}

func (n *NoopBus) PublishOrderFailed(_ context.Context, orderID string, reason string) error {
	slog.Debug("event::order_failed", "order_id", orderID, "reason", reason)
	return nil
}

func (n *NoopBus) PublishOrderCancelled(_ context.Context, orderID string) error {
	slog.Debug("event::order_cancelled", "order_id", orderID)
	return nil
}

func (n *NoopBus) PublishPaymentInitiated(_ context.Context, paymentID, orderID string) error {
	slog.Debug("event::payment_initiated", "payment_id", paymentID, "order_id", orderID)
	return nil
}

func (n *NoopBus) PublishPaymentSettled(_ context.Context, paymentID, settlementID string) error {
	slog.Debug("event::payment_settled", "payment_id", paymentID, "settlement_id", settlementID)
	return nil
}

func (n *NoopBus) PublishPaymentFailed(_ context.Context, paymentID, reason string) error {
	slog.Debug("event::payment_failed", "payment_id", paymentID, "reason", reason)
	return nil
}
