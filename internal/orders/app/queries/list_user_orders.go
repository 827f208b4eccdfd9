package queries

import (
	"context"
	"strings"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/orders/domain"
	"github.com/dkovacevic/storefront/internal/orders/ports"
)

// ListUserOrdersQuery requests a user's order history, most recent first.
type ListUserOrdersQuery struct {
	UserID string
}

// Validate ensures the query has valid parameters.
func (q ListUserOrdersQuery) Validate() error {
	if strings.TrimSpace(q.UserID) == "" {
		return apperr.BadRequest("userId is required")
	}
	return nil
}

// ListUserOrdersQueryHandler executes ListUserOrdersQuery.
type ListUserOrdersQueryHandler struct {
	repo ports.OrderRepository
}

// NewListUserOrdersQueryHandler constructs a ListUserOrdersQueryHandler.
func NewListUserOrdersQueryHandler(repo ports.OrderRepository) *ListUserOrdersQueryHandler {
	return &ListUserOrdersQueryHandler{repo: repo}
}

// Handle retrieves the user's orders ordered by creation time descending.
func (h *ListUserOrdersQueryHandler) Handle(ctx context.Context, query ListUserOrdersQuery) ([]domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.repo.ListByUser(ctx, query.UserID)
}
