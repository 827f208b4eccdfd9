// Package gateway provides a simulated payment gateway for local and test
// environments. It accepts charges synchronously and reports each outcome
// exactly once through an asynchronous webhook callback, the same contract a
// hosted gateway would honor.
package gateway

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dkovacevic/storefront/internal/payments/app"
	"github.com/dkovacevic/storefront/internal/payments/domain"
	"github.com/dkovacevic/storefront/internal/payments/ports"
)

// Sink receives the simulator's settlement callbacks. Implemented by the
// payments application service.
type Sink interface {
	ProcessWebhook(ctx context.Context, req app.WebhookRequest) error
}

// Simulator settles each accepted charge after a configurable delay,
// succeeding with the configured probability.
type Simulator struct {
	delay       time.Duration
	successRate float64
	logger      *slog.Logger

	mu   sync.RWMutex
	sink Sink
	wg   sync.WaitGroup
}

// NewSimulator constructs a Simulator. A successRate of 0.8 settles roughly
// four out of five charges successfully.
func NewSimulator(delay time.Duration, successRate float64, logger *slog.Logger) *Simulator {
	return &Simulator{
		delay:       delay,
		successRate: successRate,
		logger:      logger,
	}
}

// Attach sets the callback target. The simulator is constructed before the
// payments service, so the sink arrives after construction. Charges accepted
// without a sink are dropped with an error log.
func (s *Simulator) Attach(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Charge accepts the request and schedules its settlement callback.
func (s *Simulator) Charge(ctx context.Context, req ports.ChargeRequest) error {
	s.logger.InfoContext(ctx, "gateway accepted charge",
		"correlation_id", req.CorrelationID,
		"amount", req.Amount.String(),
	)

	// The callback must outlive the originating request.
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.settle(ctx, req)
	}()

	return nil
}

// Wait blocks until every scheduled callback has been delivered. Used in
// shutdown and tests.
func (s *Simulator) Wait() {
	s.wg.Wait()
}

func (s *Simulator) settle(ctx context.Context, req ports.ChargeRequest) {
	time.Sleep(s.delay)

	callback := app.WebhookRequest{CorrelationID: req.CorrelationID}
	if rand.Float64() < s.successRate {
		settlementID, err := domain.NewSettlementID()
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to mint settlement id", "error", err)
			return
		}
		callback.Status = string(domain.StatusSuccess)
		callback.SettlementID = settlementID
	} else {
		callback.Status = string(domain.StatusFailed)
		callback.Message = "Payment declined by bank"
	}

	s.mu.RLock()
	sink := s.sink
	s.mu.RUnlock()

	if sink == nil {
		s.logger.ErrorContext(ctx, "no webhook sink attached, dropping callback",
			"correlation_id", req.CorrelationID)
		return
	}

	if err := sink.ProcessWebhook(ctx, callback); err != nil {
		s.logger.ErrorContext(ctx, "webhook callback rejected",
			"error", err,
			"correlation_id", req.CorrelationID,
			"status", callback.Status,
		)
		return
	}

	s.logger.InfoContext(ctx, "gateway settled charge",
		"correlation_id", req.CorrelationID,
		"status", callback.Status,
	)
}
