package ports

import (
	"context"
	"errors"

	"github.com/dkovacevic/storefront/internal/catalog/domain"
)

// ProductRepository exposes catalog persistence plus the stock ledger
// operations. Stock adjustments must be atomic per product row.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)

	// ReserveStock decrements stock by quantity, failing with
	// ErrInsufficientStock when the product cannot cover it. The check and
	// the decrement happen in one atomic step.
	ReserveStock(ctx context.Context, id string, quantity int) error

	// ReleaseStock returns previously reserved stock to the product.
	ReleaseStock(ctx context.Context, id string, quantity int) error
}

var (
	// ErrNotFound is returned when the requested product does not exist.
	ErrNotFound = errors.New("product not found")

	// ErrInsufficientStock is returned when a reservation exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)
