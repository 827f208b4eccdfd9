package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChargeRequest asks the gateway to collect an amount under a correlation id.
type ChargeRequest struct {
	CorrelationID string
	Amount        decimal.Decimal
}

// PaymentGateway accepts charge requests and reports the outcome later
// through a webhook callback keyed by the correlation id.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) error
}
