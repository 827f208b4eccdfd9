package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/orders/app/commands"
	"github.com/dkovacevic/storefront/internal/orders/app/queries"
	"github.com/dkovacevic/storefront/internal/orders/domain"
	"github.com/dkovacevic/storefront/internal/orders/metrics"
	"github.com/dkovacevic/storefront/internal/orders/ports"
)

// Service bundles use cases for handling orders via the API. It also settles
// orders on behalf of the payments context, which sees it through a narrow
// interface.
type Service struct {
	repo      ports.OrderRepository
	catalog   ports.ProductCatalog
	events    ports.EventBus
	idemStore ports.IdempotencyStore
	logger    *slog.Logger
	metrics   *metrics.Metrics

	createOrderHandler commands.CommandHandler
	getOrderHandler    *queries.GetOrderQueryHandler
	listOrdersHandler  *queries.ListUserOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	cart ports.CartStore,
	catalog ports.ProductCatalog,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewCreateOrderCommandHandler(repo, cart, catalog, events)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		repo:               repo,
		catalog:            catalog,
		events:             events,
		idemStore:          idem,
		logger:             logger,
		metrics:            metrics,
		createOrderHandler: observableHandler,
		getOrderHandler:    queries.NewGetOrderQueryHandler(repo),
		listOrdersHandler:  queries.NewListUserOrdersQueryHandler(repo),
	}
}

// CreateOrderInput captures payload for placing an order.
type CreateOrderInput struct {
	UserID string `json:"userId"`
}

// CreateOrder places an order from the user's cart. Payment is a separate
// step the client starts afterwards.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	return s.createOrderHandler.Handle(ctx, commands.CreateOrderCommand{UserID: input.UserID})
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListUserOrders returns the user's orders, most recent first.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.listOrdersHandler.Handle(ctx, queries.ListUserOrdersQuery{UserID: userID})
}

// CancelOrder cancels an order that has not settled yet and returns its
// reserved stock to the ledger.
func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(); err != nil {
		return nil, apperr.InvalidOrderState(id, string(order.Status),
			fmt.Sprintf("cannot cancel order in status %s", order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.StatusCancelled); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if err := s.catalog.Release(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.ErrorContext(ctx, "failed to release stock for cancelled order",
				"error", err,
				"order_id", id,
				"product_id", item.ProductID,
			)
		}
	}

	s.metrics.RecordOrderSettled(ctx, string(domain.StatusCancelled))
	if err := s.events.PublishOrderCancelled(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order cancelled event", "error", err, "order_id", id)
	}

	return order, nil
}

// MarkOrderPaid settles a CREATED order as PAID. Settlement of an order that
// already reached a terminal status is a no-op, so replayed webhook
// deliveries never flip a settled order.
func (s *Service) MarkOrderPaid(ctx context.Context, id string) error {
	return s.settle(ctx, id, domain.StatusPaid, "")
}

// MarkOrderFailed settles a CREATED order as FAILED. Reserved stock stays
// deducted; only an explicit cancel returns it. No-op when the order already
// settled.
func (s *Service) MarkOrderFailed(ctx context.Context, id string, reason string) error {
	return s.settle(ctx, id, domain.StatusFailed, reason)
}

func (s *Service) settle(ctx context.Context, id string, status domain.OrderStatus, reason string) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("order", "id", id)
		}
		return err
	}

	if order.IsTerminal() {
		s.logger.WarnContext(ctx, "ignoring settlement for order in terminal state",
			"order_id", id,
			"current_status", string(order.Status),
			"requested_status", string(status),
		)
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.metrics.RecordOrderSettled(ctx, string(status))

	switch status {
	case domain.StatusPaid:
		err = s.events.PublishOrderPaid(ctx, id)
	case domain.StatusFailed:
		err = s.events.PublishOrderFailed(ctx, id, reason)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order settlement event",
			"error", err,
			"order_id", id,
			"status", string(status),
		)
	}

	return nil
}

// GetOrderForPayment returns the amount and current status of an order, the
// only order fields the payments context needs.
func (s *Service) GetOrderForPayment(ctx context.Context, id string) (decimal.Decimal, string, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return decimal.Zero, "", apperr.NotFound("order", "id", id)
		}
		return decimal.Zero, "", err
	}
	return order.TotalAmount, string(order.Status), nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
