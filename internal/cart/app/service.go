// Package app implements the cart use cases: add with quantity merge, listing
// with product enrichment, removal, and the clear that runs at order creation.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/cart/domain"
	"github.com/dkovacevic/storefront/internal/cart/ports"
	catalogdomain "github.com/dkovacevic/storefront/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service bundles cart use cases.
type Service struct {
	repo    ports.CartRepository
	catalog ports.ProductCatalog
	logger  *slog.Logger
}

// NewService wires required dependencies.
func NewService(repo ports.CartRepository, catalog ports.ProductCatalog, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, logger: logger}
}

// AddToCartInput captures payload for adding a product to a cart.
type AddToCartInput struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ItemView is a cart line enriched with current product details for display.
type ItemView struct {
	domain.Item
	Product *ProductInfo `json:"product,omitempty"`
}

// ProductInfo carries the catalog fields a cart listing shows.
type ProductInfo struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// AddToCart creates a line for the (user, product) pair or merges the
// quantity into the existing one. The merged quantity must be coverable by
// current stock.
func (s *Service) AddToCart(ctx context.Context, input AddToCartInput) (*ItemView, error) {
	item := domain.Item{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	}
	if err := item.Validate(); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	existing, err := s.repo.FindByUserAndProduct(ctx, input.UserID, input.ProductID)
	switch {
	case err == nil:
		item = *existing
		item.Quantity += input.Quantity
		item.UpdatedAt = now
	case errors.Is(err, ports.ErrNotFound):
		item.ID = uuid.NewString()
		item.CreatedAt = now
		item.UpdatedAt = now
	default:
		return nil, fmt.Errorf("find cart item: %w", err)
	}

	if !product.HasStock(item.Quantity) {
		return nil, apperr.InsufficientStock(product.ID, product.Name, item.Quantity, product.Stock)
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save cart item: %w", err)
	}

	s.logger.InfoContext(ctx, "cart item saved",
		"user_id", item.UserID, "product_id", item.ProductID, "quantity", item.Quantity)

	return &ItemView{Item: item, Product: productInfo(*product)}, nil
}

// ListCart returns the user's cart lines enriched with product details.
func (s *Service) ListCart(ctx context.Context, userID string) ([]ItemView, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	if len(items) == 0 {
		return []ItemView{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{Item: item}
		if product, ok := products[item.ProductID]; ok {
			view.Product = productInfo(product)
		}
		views = append(views, view)
	}
	return views, nil
}

// ItemsByUser returns the raw cart lines, used by the order engine to
// snapshot a cart.
func (s *Service) ItemsByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	return s.repo.ListByUser(ctx, userID)
}

// RemoveItem deletes a single line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	if err := s.repo.Delete(ctx, userID, productID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("Cart item", "productId", productID)
		}
		return fmt.Errorf("delete cart item: %w", err)
	}

	s.logger.InfoContext(ctx, "cart item removed", "user_id", userID, "product_id", productID)
	return nil
}

// Clear empties the user's cart. Clearing an already-empty cart is not an error.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart cleared", "user_id", userID)
	return nil
}

func productInfo(p catalogdomain.Product) *ProductInfo {
	return &ProductInfo{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
}
