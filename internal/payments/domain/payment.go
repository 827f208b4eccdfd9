package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus captures the lifecycle of a payment attempt. PENDING is the
// only state that accepts a transition; SUCCESS and FAILED are terminal.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusSuccess PaymentStatus = "SUCCESS"
	StatusFailed  PaymentStatus = "FAILED"
)

// ErrTerminalState rejects a transition attempted on a settled payment.
var ErrTerminalState = errors.New("payment is in a terminal state")

// Payment is a single attempt to collect an order's total. An order can
// accumulate several FAILED attempts but holds at most one PENDING or
// SUCCESS payment.
type Payment struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	CorrelationID string          `json:"correlation_id"`
	SettlementID  string          `json:"settlement_id,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsTerminal indicates whether the payment is in a terminal state.
func (p Payment) IsTerminal() bool {
	return p.Status == StatusSuccess || p.Status == StatusFailed
}

// MarkSuccess settles the payment with the gateway's settlement reference.
func (p *Payment) MarkSuccess(settlementID string) error {
	if p.IsTerminal() {
		return ErrTerminalState
	}
	p.Status = StatusSuccess
	p.SettlementID = settlementID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailure settles the payment with a failure reason.
func (p *Payment) MarkFailure(reason string) error {
	if p.IsTerminal() {
		return ErrTerminalState
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// NewCorrelationID mints the gateway-facing reference for a payment attempt.
func NewCorrelationID() (string, error) {
	return randomID("order_")
}

// NewSettlementID mints a gateway settlement reference.
func NewSettlementID() (string, error) {
	return randomID("pay_")
}

func randomID(prefix string) (string, error) {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + hex.EncodeToString(buf), nil
}
