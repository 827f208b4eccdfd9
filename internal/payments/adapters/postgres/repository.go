package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovacevic/storefront/internal/payments/domain"
	"github.com/dkovacevic/storefront/internal/payments/ports"
)

const paymentColumns = "id, order_id, amount, status, correlation_id, settlement_id, failure_reason, created_at, updated_at"

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, payment domain.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, amount, status, correlation_id, settlement_id, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Amount,
		payment.Status,
		payment.CorrelationID,
		nullable(payment.SettlementID),
		nullable(payment.FailureReason),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select payment: %w", err)
	}

	return payment, nil
}

func (r *Repository) GetByCorrelationID(ctx context.Context, correlationID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE correlation_id = $1`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, correlationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select payment: %w", err)
	}

	return payment, nil
}

func (r *Repository) PendingByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 AND status = $2`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID, domain.StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select pending payment: %w", err)
	}

	return payment, nil
}

func (r *Repository) LatestByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`

	payment, err := scanPayment(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select latest payment: %w", err)
	}

	return payment, nil
}

func (r *Repository) Update(ctx context.Context, payment domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, settlement_id = $2, failure_reason = $3, updated_at = $4
		WHERE correlation_id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		payment.Status,
		nullable(payment.SettlementID),
		nullable(payment.FailureReason),
		payment.UpdatedAt,
		payment.CorrelationID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	var settlementID, failureReason *string
	err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Amount,
		&payment.Status,
		&payment.CorrelationID,
		&settlementID,
		&failureReason,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if settlementID != nil {
		payment.SettlementID = *settlementID
	}
	if failureReason != nil {
		payment.FailureReason = *failureReason
	}
	return &payment, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
