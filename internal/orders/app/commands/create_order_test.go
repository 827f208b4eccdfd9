package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dkovacevic/storefront/internal/apperr"
	cartdomain "github.com/dkovacevic/storefront/internal/cart/domain"
	catalogdomain "github.com/dkovacevic/storefront/internal/catalog/domain"
	"github.com/dkovacevic/storefront/internal/orders/app/commands"
	"github.com/dkovacevic/storefront/internal/orders/domain"
)

type mockRepository struct {
	createFn func(ctx context.Context, order domain.Order) error
	created  []domain.Order
}

func (m *mockRepository) Create(ctx context.Context, order domain.Order) error {
	m.created = append(m.created, order)
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return nil
}

type mockEventBus struct {
	publishOrderCreatedFn func(ctx context.Context, orderID string) error
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	if m.publishOrderCreatedFn != nil {
		return m.publishOrderCreatedFn(ctx, orderID)
	}
	return nil
}

func (m *mockEventBus) PublishOrderPaid(ctx context.Context, orderID string) error {
	return nil
}

func (m *mockEventBus) PublishOrderFailed(ctx context.Context, orderID string, reason string) error {
	return nil
}

func (m *mockEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return nil
}

type mockCartStore struct {
	items   []cartdomain.Item
	cleared []string
}

func (m *mockCartStore) ItemsByUser(ctx context.Context, userID string) ([]cartdomain.Item, error) {
	return m.items, nil
}

func (m *mockCartStore) Clear(ctx context.Context, userID string) error {
	m.cleared = append(m.cleared, userID)
	return nil
}

type mockCatalog struct {
	products  map[string]catalogdomain.Product
	reserveFn func(ctx context.Context, productID string, quantity int) error
	reserved  map[string]int
	released  map[string]int
}

func newMockCatalog(products ...catalogdomain.Product) *mockCatalog {
	m := &mockCatalog{
		products: make(map[string]catalogdomain.Product),
		reserved: make(map[string]int),
		released: make(map[string]int),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) ProductsByIDs(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error) {
	out := make(map[string]catalogdomain.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockCatalog) Reserve(ctx context.Context, productID string, quantity int) error {
	if m.reserveFn != nil {
		if err := m.reserveFn(ctx, productID, quantity); err != nil {
			return err
		}
	}
	m.reserved[productID] += quantity
	return nil
}

func (m *mockCatalog) Release(ctx context.Context, productID string, quantity int) error {
	m.released[productID] += quantity
	return nil
}

func product(id, name, price string, stock int) catalogdomain.Product {
	return catalogdomain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func cartItem(userID, productID string, qty int) cartdomain.Item {
	return cartdomain.Item{UserID: userID, ProductID: productID, Quantity: qty}
}

func TestCreateOrder(t *testing.T) {
	t.Run("snapshots cart lines into a created order", func(t *testing.T) {
		repo := &mockRepository{}
		cart := &mockCartStore{items: []cartdomain.Item{
			cartItem("user-1", "p-1", 2),
			cartItem("user-1", "p-2", 1),
		}}
		catalog := newMockCatalog(
			product("p-1", "Widget", "19.99", 10),
			product("p-2", "Gadget", "5.00", 3),
		)
		handler := commands.NewCreateOrderCommandHandler(repo, cart, catalog, &mockEventBus{})

		order, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "user-1"})

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order.ID == "" {
			t.Error("expected order ID to be generated")
		}
		if order.Status != domain.StatusCreated {
			t.Errorf("status = %s, want %s", order.Status, domain.StatusCreated)
		}
		if len(order.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(order.Items))
		}
		if order.Items[0].ProductName != "Widget" {
			t.Errorf("item name = %s, want Widget", order.Items[0].ProductName)
		}
		want := decimal.RequireFromString("44.98")
		if !order.TotalAmount.Equal(want) {
			t.Errorf("total = %s, want %s", order.TotalAmount, want)
		}
		if catalog.reserved["p-1"] != 2 || catalog.reserved["p-2"] != 1 {
			t.Errorf("unexpected reservations: %+v", catalog.reserved)
		}
		if len(cart.cleared) != 1 || cart.cleared[0] != "user-1" {
			t.Errorf("expected cart cleared for user-1, got %v", cart.cleared)
		}
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		repo := &mockRepository{}
		cart := &mockCartStore{}
		catalog := newMockCatalog()
		handler := commands.NewCreateOrderCommandHandler(repo, cart, catalog, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "user-1"})

		if !apperr.IsBadRequest(err) {
			t.Fatalf("expected bad request error, got: %v", err)
		}
		if len(repo.created) != 0 {
			t.Error("no order should be persisted for an empty cart")
		}
	})

	t.Run("rejects missing userId", func(t *testing.T) {
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, &mockCartStore{}, newMockCatalog(), &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "  "})

		if !apperr.IsBadRequest(err) {
			t.Fatalf("expected bad request error, got: %v", err)
		}
	})

	t.Run("rejects unknown product without touching stock", func(t *testing.T) {
		cart := &mockCartStore{items: []cartdomain.Item{cartItem("user-1", "missing", 1)}}
		catalog := newMockCatalog()
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, cart, catalog, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "user-1"})

		if !apperr.IsNotFound(err) {
			t.Fatalf("expected not found error, got: %v", err)
		}
		if len(catalog.reserved) != 0 {
			t.Errorf("no stock should be reserved, got %+v", catalog.reserved)
		}
	})

	t.Run("rejects insufficient stock before reserving any line", func(t *testing.T) {
		cart := &mockCartStore{items: []cartdomain.Item{
			cartItem("user-1", "p-1", 1),
			cartItem("user-1", "p-2", 5),
		}}
		catalog := newMockCatalog(
			product("p-1", "Widget", "19.99", 10),
			product("p-2", "Gadget", "5.00", 3),
		)
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, cart, catalog, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "user-1"})

		if !apperr.IsInsufficientStock(err) {
			t.Fatalf("expected insufficient stock error, got: %v", err)
		}
		if len(catalog.reserved) != 0 {
			t.Errorf("no stock should be reserved, got %+v", catalog.reserved)
		}
		if len(cart.cleared) != 0 {
			t.Error("cart must survive a failed placement")
		}
	})

	t.Run("releases earlier lines when a later reservation loses the race", func(t *testing.T) {
		cart := &mockCartStore{items: []cartdomain.Item{
			cartItem("user-1", "p-1", 2),
			cartItem("user-1", "p-2", 1),
		}}
		catalog := newMockCatalog(
			product("p-1", "Widget", "19.99", 10),
			product("p-2", "Gadget", "5.00", 3),
		)
		catalog.reserveFn = func(ctx context.Context, productID string, quantity int) error {
			if productID == "p-2" {
				return apperr.InsufficientStock("p-2", "Gadget", 1, 0)
			}
			return nil
		}
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, cart, catalog, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "user-1"})

		if !apperr.IsInsufficientStock(err) {
			t.Fatalf("expected insufficient stock error, got: %v", err)
		}
		if catalog.released["p-1"] != 2 {
			t.Errorf("expected 2 units of p-1 released, got %d", catalog.released["p-1"])
		}
	})

	t.Run("releases stock when persistence fails", func(t *testing.T) {
		repoErr := errors.New("database connection failed")
		repo := &mockRepository{createFn: func(ctx context.Context, order domain.Order) error {
			return repoErr
		}}
		cart := &mockCartStore{items: []cartdomain.Item{cartItem("user-1", "p-1", 2)}}
		catalog := newMockCatalog(product("p-1", "Widget", "19.99", 10))
		handler := commands.NewCreateOrderCommandHandler(repo, cart, catalog, &mockEventBus{})

		_, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "user-1"})

		if !errors.Is(err, repoErr) {
			t.Fatalf("expected error to wrap repository error, got: %v", err)
		}
		if catalog.released["p-1"] != 2 {
			t.Errorf("expected 2 units of p-1 released, got %d", catalog.released["p-1"])
		}
		if len(cart.cleared) != 0 {
			t.Error("cart must survive a failed placement")
		}
	})

	t.Run("returns order even when event publishing fails", func(t *testing.T) {
		eventErr := errors.New("event bus unavailable")
		events := &mockEventBus{
			publishOrderCreatedFn: func(ctx context.Context, orderID string) error {
				return eventErr
			},
		}
		cart := &mockCartStore{items: []cartdomain.Item{cartItem("user-1", "p-1", 1)}}
		catalog := newMockCatalog(product("p-1", "Widget", "19.99", 10))
		handler := commands.NewCreateOrderCommandHandler(&mockRepository{}, cart, catalog, events)

		order, err := handler.Handle(context.Background(), commands.CreateOrderCommand{UserID: "user-1"})

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if order == nil {
			t.Fatal("expected order to be returned even on event bus error")
		}
	})
}
