// Package app implements the catalog use cases and the inventory ledger the
// order engine draws stock from.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/catalog/domain"
	"github.com/dkovacevic/storefront/internal/catalog/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service bundles catalog and inventory use cases.
type Service struct {
	repo   ports.ProductRepository
	logger *slog.Logger
}

// NewService wires required dependencies.
func NewService(repo ports.ProductRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProductInput captures payload for adding a catalog entry.
type CreateProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// CreateProduct registers a new product with its opening stock.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := product.Validate(); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "stock", product.Stock)
	return &product, nil
}

// GetProduct retrieves a single product by ID.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperr.NotFound("Product", "id", id)
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns the full catalog.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// ProductsByIDs batch-loads products keyed by ID. Missing IDs are simply
// absent from the result; callers decide whether that is an error.
func (s *Service) ProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	products, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// HasStock reports whether the product can cover the quantity right now.
// The answer is advisory: only Reserve decides authoritatively.
func (s *Service) HasStock(ctx context.Context, productID string, quantity int) (bool, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return product.HasStock(quantity), nil
}

// Reserve deducts stock for a purchase. The repository performs the check
// and decrement atomically, so a concurrent order cannot drive stock
// negative between validation and deduction.
func (s *Service) Reserve(ctx context.Context, productID string, quantity int) error {
	err := s.repo.ReserveStock(ctx, productID, quantity)
	if err == nil {
		s.logger.DebugContext(ctx, "stock reserved", "product_id", productID, "quantity", quantity)
		return nil
	}

	if errors.Is(err, ports.ErrNotFound) {
		return apperr.NotFound("Product", "id", productID)
	}

	if errors.Is(err, ports.ErrInsufficientStock) {
		product, getErr := s.repo.GetByID(ctx, productID)
		if getErr != nil {
			return apperr.InsufficientStock(productID, "", quantity, 0)
		}
		return apperr.InsufficientStock(product.ID, product.Name, quantity, product.Stock)
	}

	return fmt.Errorf("reserve stock: %w", err)
}

// Release returns stock after a cancellation.
func (s *Service) Release(ctx context.Context, productID string, quantity int) error {
	if err := s.repo.ReleaseStock(ctx, productID, quantity); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("Product", "id", productID)
		}
		return fmt.Errorf("release stock: %w", err)
	}

	s.logger.DebugContext(ctx, "stock released", "product_id", productID, "quantity", quantity)
	return nil
}
