package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dkovacevic/storefront/internal/cart/domain"
	"github.com/dkovacevic/storefront/internal/cart/ports"
)

type pairKey struct {
	userID    string
	productID string
}

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu    sync.RWMutex
	items map[pairKey]domain.Item
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{items: make(map[pairKey]domain.Item)}
}

func (r *Repository) FindByUserAndProduct(_ context.Context, userID, productID string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[pairKey{userID, productID}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := item
	return &copy, nil
}

func (r *Repository) Save(_ context.Context, item domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[pairKey{item.UserID, item.ProductID}] = item
	return nil
}

func (r *Repository) ListByUser(_ context.Context, userID string) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Item
	for key, item := range r.items {
		if key.userID == userID {
			result = append(result, item)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) Delete(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{userID, productID}
	if _, ok := r.items[key]; !ok {
		return ports.ErrNotFound
	}

	delete(r.items, key)
	return nil
}

func (r *Repository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.items {
		if key.userID == userID {
			delete(r.items, key)
		}
	}
	return nil
}
