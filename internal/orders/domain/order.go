package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the lifecycle of an order. CREATED is the only state
// that accepts a transition; PAID, FAILED and CANCELLED are terminal.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusPaid      OrderStatus = "PAID"
	StatusFailed    OrderStatus = "FAILED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ErrTerminalState rejects a transition attempted on a settled order.
var ErrTerminalState = errors.New("order is in a terminal state")

// OrderItem is a point-in-time snapshot of a purchased product. Name and
// price are copied at order creation, so later catalog changes never touch
// existing orders.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal is the line total at order time.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is an immutable line-item purchase. Only Status and UpdatedAt change
// after creation.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsTerminal indicates whether the order is in a terminal state.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusPaid, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// MarkPaid settles the order after a successful payment.
func (o *Order) MarkPaid() error {
	return o.transition(StatusPaid)
}

// MarkFailed settles the order after a failed payment.
func (o *Order) MarkFailed() error {
	return o.transition(StatusFailed)
}

// Cancel settles the order on explicit user cancellation.
func (o *Order) Cancel() error {
	return o.transition(StatusCancelled)
}

func (o *Order) transition(to OrderStatus) error {
	if o.Status != StatusCreated {
		return ErrTerminalState
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}
