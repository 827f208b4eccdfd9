package ports

import (
	"context"
	"errors"

	"github.com/dkovacevic/storefront/internal/payments/domain"
)

// PaymentRepository exposes persistence operations required by the application layer.
type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByCorrelationID(ctx context.Context, correlationID string) (*domain.Payment, error)
	PendingByOrder(ctx context.Context, orderID string) (*domain.Payment, error)
	LatestByOrder(ctx context.Context, orderID string) (*domain.Payment, error)
	Update(ctx context.Context, payment domain.Payment) error
}

var (
	// ErrNotFound is returned when the requested payment does not exist.
	ErrNotFound = errors.New("payment not found")
)
