package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

const subscriptionColumns = `id, user_id, plan_id, amount, currency, status,
		processor_subscription_id, processor_customer_id,
		current_period_start, current_period_end, canceled_at, trial_start, trial_end,
		created_at, updated_at`

type SubscriptionRepository struct {
	db     *DB
	outbox *OutboxRepository
}

var _ application.SubscriptionStore = (*SubscriptionRepository)(nil)

func NewSubscriptionRepository(db *DB, outbox *OutboxRepository) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, outbox: outbox}
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	m := toSubscriptionModel(subscription)
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			m.ID, m.UserID, m.PlanID, m.Amount, m.Currency, m.Status,
			m.ProcessorSubscriptionID, m.ProcessorCustomerID,
			m.CurrentPeriodStart, m.CurrentPeriodEnd, m.CanceledAt, m.TrialStart, m.TrialEnd,
			m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		return r.outbox.EnqueueTx(ctx, tx, subscription.PullEvents())
	})
}

func (r *SubscriptionRepository) Update(ctx context.Context, subscription *domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan_id = $2, amount = $3, currency = $4, status = $5,
			processor_subscription_id = $6, processor_customer_id = $7,
			current_period_start = $8, current_period_end = $9,
			canceled_at = $10, trial_start = $11, trial_end = $12,
			updated_at = $13
		WHERE id = $1
	`

	m := toSubscriptionModel(subscription)
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			m.ID, m.PlanID, m.Amount, m.Currency, m.Status,
			m.ProcessorSubscriptionID, m.ProcessorCustomerID,
			m.CurrentPeriodStart, m.CurrentPeriodEnd,
			m.CanceledAt, m.TrialStart, m.TrialEnd,
			m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NewSubscriptionNotFoundError(m.ID)
		}
		return r.outbox.EnqueueTx(ctx, tx, subscription.PullEvents())
	})
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	row := r.db.Pool.QueryRow(ctx, query, id)
	return scanSubscription(row, id)
}

func (r *SubscriptionRepository) FindByProcessorRef(ctx context.Context, ref string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE processor_subscription_id = $1`
	row := r.db.Pool.QueryRow(ctx, query, ref)
	return scanSubscription(row, ref)
}

func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions by user_id: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Subscription, error) {
		var m SubscriptionModel
		err := row.Scan(
			&m.ID, &m.UserID, &m.PlanID, &m.Amount, &m.Currency, &m.Status,
			&m.ProcessorSubscriptionID, &m.ProcessorCustomerID,
			&m.CurrentPeriodStart, &m.CurrentPeriodEnd, &m.CanceledAt, &m.TrialStart, &m.TrialEnd,
			&m.CreatedAt, &m.UpdatedAt,
		)
		return toSubscriptionDomain(m), err
	})
}

func scanSubscription(row pgx.Row, ref string) (*domain.Subscription, error) {
	var m SubscriptionModel
	err := row.Scan(
		&m.ID, &m.UserID, &m.PlanID, &m.Amount, &m.Currency, &m.Status,
		&m.ProcessorSubscriptionID, &m.ProcessorCustomerID,
		&m.CurrentPeriodStart, &m.CurrentPeriodEnd, &m.CanceledAt, &m.TrialStart, &m.TrialEnd,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewSubscriptionNotFoundError(ref)
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return toSubscriptionDomain(m), nil
}
