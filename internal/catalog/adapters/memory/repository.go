package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkovacevic/storefront/internal/catalog/domain"
	"github.com/dkovacevic/storefront/internal/catalog/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{products: make(map[string]domain.Product)}
}

func (r *Repository) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := product
	return &copy, nil
}

func (r *Repository) ListByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Product
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

func (r *Repository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// ReserveStock decrements under the lock and re-checks that the result is
// non-negative, restoring the previous value when it is not.
func (r *Repository) ReserveStock(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}

	product.Stock -= quantity
	if product.Stock < 0 {
		return ports.ErrInsufficientStock
	}

	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return nil
}

func (r *Repository) ReleaseStock(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return ports.ErrNotFound
	}

	product.Stock += quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return nil
}
