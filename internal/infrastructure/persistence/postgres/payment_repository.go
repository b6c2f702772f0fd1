package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

const paymentColumns = `id, user_id, amount, refunded_amount, currency, status, method_type, method_id,
		processor_intent_id, processor_charge_id, description, failure_reason,
		processed_at, created_at, updated_at`

// PaymentRepository persists Payment aggregates. Writes drain the
// aggregate's pending events into the outbox in the same transaction.
type PaymentRepository struct {
	db     *DB
	outbox *OutboxRepository
}

var _ application.PaymentStore = (*PaymentRepository)(nil)

func NewPaymentRepository(db *DB, outbox *OutboxRepository) *PaymentRepository {
	return &PaymentRepository{db: db, outbox: outbox}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	m := toPaymentModel(payment)
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			m.ID, m.UserID, m.Amount, m.RefundedAmount, m.Currency, m.Status, m.MethodType, m.MethodID,
			m.ProcessorIntentID, m.ProcessorChargeID, m.Description, m.FailureReason,
			m.ProcessedAt, m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return fmt.Errorf("create payment: %w", application.ErrDuplicateProcessorRef)
			}
			return fmt.Errorf("create payment: %w", err)
		}
		return r.outbox.EnqueueTx(ctx, tx, payment.PullEvents())
	})
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET amount = $2, refunded_amount = $3, currency = $4, status = $5,
			method_type = $6, method_id = $7,
			processor_intent_id = $8, processor_charge_id = $9,
			description = $10, failure_reason = $11,
			processed_at = $12, updated_at = $13
		WHERE id = $1
	`

	m := toPaymentModel(payment)
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			m.ID, m.Amount, m.RefundedAmount, m.Currency, m.Status,
			m.MethodType, m.MethodID,
			m.ProcessorIntentID, m.ProcessorChargeID,
			m.Description, m.FailureReason,
			m.ProcessedAt, m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NewPaymentNotFoundError(m.ID)
		}
		return r.outbox.EnqueueTx(ctx, tx, payment.PullEvents())
	})
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	row := r.db.Pool.QueryRow(ctx, query, id)
	return scanPayment(row, id)
}

// FindByProcessorRef locates the payment a webhook event refers to. Both the
// intent id and the settled charge id are accepted, since the processor uses
// either depending on event type.
func (r *PaymentRepository) FindByProcessorRef(ctx context.Context, ref string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE processor_intent_id = $1 OR processor_charge_id = $1`
	row := r.db.Pool.QueryRow(ctx, query, ref)
	return scanPayment(row, ref)
}

func (r *PaymentRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query payments by user_id: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		var m PaymentModel
		err := row.Scan(
			&m.ID, &m.UserID, &m.Amount, &m.RefundedAmount, &m.Currency, &m.Status, &m.MethodType, &m.MethodID,
			&m.ProcessorIntentID, &m.ProcessorChargeID, &m.Description, &m.FailureReason,
			&m.ProcessedAt, &m.CreatedAt, &m.UpdatedAt,
		)
		return toPaymentDomain(m), err
	})
}

func scanPayment(row pgx.Row, ref string) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.UserID, &m.Amount, &m.RefundedAmount, &m.Currency, &m.Status, &m.MethodType, &m.MethodID,
		&m.ProcessorIntentID, &m.ProcessorChargeID, &m.Description, &m.FailureReason,
		&m.ProcessedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPaymentNotFoundError(ref)
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return toPaymentDomain(m), nil
}
