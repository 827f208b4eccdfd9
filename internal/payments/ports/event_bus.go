package ports

import "context"

// EventBus defines the contract for publishing payment lifecycle events.
type EventBus interface {
	PublishPaymentInitiated(ctx context.Context, paymentID, orderID string) error
	PublishPaymentSettled(ctx context.Context, paymentID, settlementID string) error
	PublishPaymentFailed(ctx context.Context, paymentID, reason string) error
}
