package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwhayford/rentledger/internal/domain"
)

// OutboxRepository stores domain events durably in the same transaction as
// the aggregate write that produced them. A relay worker drains the table
// and publishes to downstream collaborators.
type OutboxRepository struct {
	db *DB
}

func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// EnqueueTx writes events inside the caller's transaction.
func (r *OutboxRepository) EnqueueTx(ctx context.Context, tx pgx.Tx, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO outbox_events (id, event_name, correlation_id, payload, occurred_on, created_at, attempts)
		VALUES ($1, $2, $3, $4, $5, NOW(), 0)
	`

	for _, event := range events {
		payload, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal outbox payload: %w", err)
		}
		if _, err := tx.Exec(ctx, query,
			event.ID.String(),
			event.Name,
			event.CorrelationID,
			payload,
			event.OccurredOn,
		); err != nil {
			return fmt.Errorf("enqueue outbox event: %w", err)
		}
	}
	return nil
}

// FindUnpublished returns the oldest unpublished events up to limit.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]OutboxMessage, error) {
	query := `
		SELECT id, event_name, correlation_id, payload, occurred_on, created_at, published_at, attempts
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished outbox events: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (OutboxMessage, error) {
		var m OutboxMessage
		err := row.Scan(&m.ID, &m.EventName, &m.CorrelationID, &m.Payload, &m.OccurredOn, &m.CreatedAt, &m.PublishedAt, &m.Attempts)
		return m, err
	})
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string) error {
	query := `UPDATE outbox_events SET published_at = NOW() WHERE id = $1`
	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("mark outbox event published: %w", err)
	}
	return nil
}

func (r *OutboxRepository) RecordAttempt(ctx context.Context, id string) error {
	query := `UPDATE outbox_events SET attempts = attempts + 1 WHERE id = $1`
	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("record outbox attempt: %w", err)
	}
	return nil
}
