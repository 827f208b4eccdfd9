package memory

import (
	"context"
	"sync"

	"github.com/dkovacevic/storefront/internal/payments/domain"
	"github.com/dkovacevic/storefront/internal/payments/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu       sync.RWMutex
	payments map[string]domain.Payment // keyed by correlation id
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{payments: make(map[string]domain.Payment)}
}

// Create stores a new payment attempt.
func (r *Repository) Create(_ context.Context, payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.CorrelationID] = payment
	return nil
}

// GetByID fetches a payment by its primary id.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, payment := range r.payments {
		if payment.ID == id {
			p := payment
			return &p, nil
		}
	}
	return nil, ports.ErrNotFound
}

// GetByCorrelationID fetches the payment carrying the correlation id.
func (r *Repository) GetByCorrelationID(_ context.Context, correlationID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.payments[correlationID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &payment, nil
}

// PendingByOrder returns the order's in-flight payment, or nil when the
// order has none.
func (r *Repository) PendingByOrder(_ context.Context, orderID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, payment := range r.payments {
		if payment.OrderID == orderID && payment.Status == domain.StatusPending {
			p := payment
			return &p, nil
		}
	}
	return nil, nil
}

// LatestByOrder returns the order's most recent payment attempt, or nil when
// the order has none.
func (r *Repository) LatestByOrder(_ context.Context, orderID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Payment
	for _, payment := range r.payments {
		if payment.OrderID != orderID {
			continue
		}
		if latest == nil || payment.CreatedAt.After(latest.CreatedAt) {
			p := payment
			latest = &p
		}
	}
	return latest, nil
}

// Update overwrites the stored payment.
func (r *Repository) Update(_ context.Context, payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.CorrelationID]; !ok {
		return ports.ErrNotFound
	}
	r.payments[payment.CorrelationID] = payment
	return nil
}
