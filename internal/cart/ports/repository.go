package ports

import (
	"context"
	"errors"

	"github.com/dkovacevic/storefront/internal/cart/domain"
)

// CartRepository exposes persistence for cart lines. Save upserts by line ID,
// keeping the (user, product) pair unique.
type CartRepository interface {
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*domain.Item, error)
	Save(ctx context.Context, item domain.Item) error
	ListByUser(ctx context.Context, userID string) ([]domain.Item, error)
	Delete(ctx context.Context, userID, productID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

var (
	// ErrNotFound is returned when the requested cart line does not exist.
	ErrNotFound = errors.New("cart item not found")
)
