package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/orders/domain"
	"github.com/dkovacevic/storefront/internal/orders/ports"
)

type CreateOrderCommand struct {
	UserID string
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return apperr.BadRequest("userId is required")
	}
	return nil
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

// CreateOrderCommandHandler turns the user's cart into an order: it snapshots
// product name and price per line, reserves stock, persists the order and
// clears the cart.
type CreateOrderCommandHandler struct {
	repo    ports.OrderRepository
	cart    ports.CartStore
	catalog ports.ProductCatalog
	events  ports.EventBus
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	cart ports.CartStore,
	catalog ports.ProductCatalog,
	events ports.EventBus,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:    repo,
		cart:    cart,
		catalog: catalog,
		events:  events,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items, err := h.cart.ItemsByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, apperr.BadRequest("cart is empty")
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := h.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	// Validate every line before touching stock so a request that cannot
	// succeed leaves the ledger untouched.
	lines := make([]domain.OrderItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, apperr.NotFound("product", "id", item.ProductID)
		}
		if !product.HasStock(item.Quantity) {
			return nil, apperr.InsufficientStock(product.ID, product.Name, item.Quantity, product.Stock)
		}
		line := domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		}
		lines = append(lines, line)
		total = total.Add(line.Subtotal())
	}

	// Conditional per-line deduction catches concurrent buyers the
	// pre-validation above cannot see. Undo partial reservations on failure.
	reserved := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		if err := h.catalog.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			h.releaseAll(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, line)
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:          uuid.NewString(),
		UserID:      cmd.UserID,
		TotalAmount: total,
		Status:      domain.StatusCreated,
		Items:       lines,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.Create(ctx, order); err != nil {
		h.releaseAll(ctx, reserved)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if err := h.cart.Clear(ctx, cmd.UserID); err != nil {
		return &order, fmt.Errorf("order saved but failed to clear cart: %w", err)
	}

	if err := h.events.PublishOrderCreated(ctx, order.ID); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}

func (h *CreateOrderCommandHandler) releaseAll(ctx context.Context, reserved []domain.OrderItem) {
	for _, line := range reserved {
		_ = h.catalog.Release(ctx, line.ProductID, line.Quantity)
	}
}
