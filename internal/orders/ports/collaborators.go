package ports

import (
	"context"

	cartdomain "github.com/dkovacevic/storefront/internal/cart/domain"
	catalogdomain "github.com/dkovacevic/storefront/internal/catalog/domain"
)

// ProductCatalog is the slice of the catalog context the order engine needs:
// batch product lookup for snapshotting, and stock movement in both
// directions.
type ProductCatalog interface {
	ProductsByIDs(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error)
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
}

// CartStore reads and clears the user's cart during order placement.
type CartStore interface {
	ItemsByUser(ctx context.Context, userID string) ([]cartdomain.Item, error)
	Clear(ctx context.Context, userID string) error
}
