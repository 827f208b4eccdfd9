package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkovacevic/storefront/internal/apperr"
	"github.com/dkovacevic/storefront/internal/payments/domain"
	"github.com/dkovacevic/storefront/internal/payments/metrics"
	"github.com/dkovacevic/storefront/internal/payments/ports"
)

// Service runs the payment side of the order lifecycle: it opens payment
// attempts against the gateway and reconciles the asynchronous outcomes the
// gateway reports back through webhooks.
type Service struct {
	repo    ports.PaymentRepository
	orders  ports.OrderStore
	gateway ports.PaymentGateway
	events  ports.EventBus
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService wires required dependencies.
func NewService(
	repo ports.PaymentRepository,
	orders ports.OrderStore,
	gateway ports.PaymentGateway,
	events ports.EventBus,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:    repo,
		orders:  orders,
		gateway: gateway,
		events:  events,
		logger:  logger,
		metrics: metrics,
	}
}

// InitiatePayment opens a payment attempt for an order and hands it to the
// gateway. Calling it again while an attempt is still pending returns the
// pending attempt's correlation id instead of charging twice; after a failed
// attempt it opens a fresh one.
func (s *Service) InitiatePayment(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", apperr.BadRequest("orderId is required")
	}

	amount, orderStatus, err := s.orders.GetOrderForPayment(ctx, orderID)
	if err != nil {
		return "", err
	}
	if orderStatus != "CREATED" {
		return "", apperr.InvalidOrderState(orderID, orderStatus,
			fmt.Sprintf("cannot initiate payment for order in status %s", orderStatus))
	}

	if pending, err := s.repo.PendingByOrder(ctx, orderID); err != nil {
		return "", err
	} else if pending != nil {
		s.logger.InfoContext(ctx, "payment already pending for order, reusing attempt",
			"order_id", orderID,
			"correlation_id", pending.CorrelationID,
		)
		return pending.CorrelationID, nil
	}

	if latest, err := s.repo.LatestByOrder(ctx, orderID); err != nil {
		return "", err
	} else if latest != nil && latest.Status == domain.StatusSuccess {
		return "", apperr.BadRequest("order is already paid")
	}

	correlationID, err := domain.NewCorrelationID()
	if err != nil {
		return "", apperr.PaymentProcessing("failed to create payment attempt", err)
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		Amount:        amount,
		Status:        domain.StatusPending,
		CorrelationID: correlationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return "", fmt.Errorf("persist payment: %w", err)
	}

	if err := s.gateway.Charge(ctx, ports.ChargeRequest{
		CorrelationID: correlationID,
		Amount:        amount,
	}); err != nil {
		return "", apperr.PaymentProcessing("gateway rejected charge", err)
	}

	s.metrics.RecordPaymentInitiated(ctx)
	if err := s.events.PublishPaymentInitiated(ctx, payment.ID, orderID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment initiated event",
			"error", err, "payment_id", payment.ID)
	}

	return correlationID, nil
}

// WebhookRequest is the gateway's settlement callback payload.
type WebhookRequest struct {
	CorrelationID string `json:"correlationId"`
	Status        string `json:"status"`
	SettlementID  string `json:"settlementId,omitempty"`
	Message       string `json:"message,omitempty"`
}

// normalizedStatus matches the gateway's status field case-insensitively.
func (r WebhookRequest) normalizedStatus() string {
	return strings.ToUpper(strings.TrimSpace(r.Status))
}

// Validate checks the callback before it can touch any payment state.
func (r WebhookRequest) Validate() error {
	if strings.TrimSpace(r.CorrelationID) == "" {
		return apperr.BadRequest("correlationId is required")
	}
	switch r.normalizedStatus() {
	case string(domain.StatusSuccess):
		if strings.TrimSpace(r.SettlementID) == "" {
			return apperr.BadRequest("settlementId is required for a successful payment")
		}
	case string(domain.StatusFailed):
	case "":
		return apperr.BadRequest("status is required")
	default:
		return apperr.BadRequest(fmt.Sprintf("unknown payment status %q", r.Status))
	}
	return nil
}

// ProcessWebhook reconciles a gateway callback with the stored payment and
// its order. Redelivered callbacks for a settled payment are acknowledged
// without changing anything.
func (s *Service) ProcessWebhook(ctx context.Context, req WebhookRequest) error {
	start := time.Now()
	err := s.processWebhook(ctx, req)
	s.metrics.RecordWebhookProcessed(ctx, time.Since(start).Seconds(), err == nil)
	return err
}

func (s *Service) processWebhook(ctx context.Context, req WebhookRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	payment, err := s.repo.GetByCorrelationID(ctx, req.CorrelationID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("payment", "correlationId", req.CorrelationID)
		}
		return err
	}

	if payment.IsTerminal() {
		s.logger.WarnContext(ctx, "ignoring webhook for settled payment",
			"correlation_id", req.CorrelationID,
			"payment_status", string(payment.Status),
			"webhook_status", req.Status,
		)
		return nil
	}

	switch req.normalizedStatus() {
	case string(domain.StatusSuccess):
		return s.settleSuccess(ctx, payment, req.SettlementID)
	default:
		reason := strings.TrimSpace(req.Message)
		if reason == "" {
			reason = "Payment failed"
		}
		return s.settleFailure(ctx, payment, reason)
	}
}

func (s *Service) settleSuccess(ctx context.Context, payment *domain.Payment, settlementID string) error {
	if err := payment.MarkSuccess(settlementID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, *payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if err := s.orders.MarkOrderPaid(ctx, payment.OrderID); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	s.metrics.RecordPaymentSettled(ctx, string(domain.StatusSuccess))
	s.logger.InfoContext(ctx, "payment settled",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"settlement_id", settlementID,
	)
	if err := s.events.PublishPaymentSettled(ctx, payment.ID, settlementID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment settled event",
			"error", err, "payment_id", payment.ID)
	}
	return nil
}

func (s *Service) settleFailure(ctx context.Context, payment *domain.Payment, reason string) error {
	if err := payment.MarkFailure(reason); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, *payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if err := s.orders.MarkOrderFailed(ctx, payment.OrderID, reason); err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}

	s.metrics.RecordPaymentSettled(ctx, string(domain.StatusFailed))
	s.logger.InfoContext(ctx, "payment failed",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"reason", reason,
	)
	if err := s.events.PublishPaymentFailed(ctx, payment.ID, reason); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment failed event",
			"error", err, "payment_id", payment.ID)
	}
	return nil
}

// GetPayment looks up a payment attempt by its id.
func (s *Service) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.BadRequest("paymentId is required")
	}
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperr.NotFound("payment", "id", id)
		}
		return nil, err
	}
	return payment, nil
}

// PaymentByOrder returns the most recent payment attempt for an order.
func (s *Service) PaymentByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperr.BadRequest("orderId is required")
	}
	payment, err := s.repo.LatestByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperr.NotFound("payment", "orderId", orderID)
	}
	return payment, nil
}

// PaymentByCorrelationID looks up a single payment attempt.
func (s *Service) PaymentByCorrelationID(ctx context.Context, correlationID string) (*domain.Payment, error) {
	payment, err := s.repo.GetByCorrelationID(ctx, correlationID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, apperr.NotFound("payment", "correlationId", correlationID)
		}
		return nil, err
	}
	return payment, nil
}
