package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderStore is the slice of the orders context the payment engine needs.
// Implemented by the orders application service.
type OrderStore interface {
	GetOrderForPayment(ctx context.Context, orderID string) (amount decimal.Decimal, status string, err error)
	MarkOrderPaid(ctx context.Context, orderID string) error
	MarkOrderFailed(ctx context.Context, orderID string, reason string) error
}
