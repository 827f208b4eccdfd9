package ports

import (
	"context"

	catalogdomain "github.com/dkovacevic/storefront/internal/catalog/domain"
)

// ProductCatalog is the slice of the catalog service the cart needs: lookups
// for validation and enrichment.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*catalogdomain.Product, error)
	ProductsByIDs(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error)
}
