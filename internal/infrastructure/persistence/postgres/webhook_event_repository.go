package postgres

import (
	"context"
	"fmt"

	"github.com/mwhayford/rentledger/internal/application"
)

// WebhookEventRepository is the durable leg of webhook dedup: one row per
// processor event id, marked processed only after the reconciling write
// commits. It doubles as a delivery journal.
type WebhookEventRepository struct {
	db *DB
}

var _ application.EventDedup = (*WebhookEventRepository)(nil)

func NewWebhookEventRepository(db *DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM webhook_events
			WHERE provider_event_id = $1 AND processed_at IS NOT NULL
		)
	`

	var processed bool
	if err := r.db.Pool.QueryRow(ctx, query, eventID).Scan(&processed); err != nil {
		return false, fmt.Errorf("check webhook event: %w", err)
	}
	return processed, nil
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	query := `
		INSERT INTO webhook_events (provider_event_id, event_type, processed_at, created_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (provider_event_id)
		DO UPDATE SET processed_at = NOW(), processing_error = NULL
	`

	if _, err := r.db.Pool.Exec(ctx, query, eventID, eventType); err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return nil
}

// RecordFailure journals a processing error so operators can see why the
// processor keeps redelivering an event. Best-effort; callers ignore errors.
func (r *WebhookEventRepository) RecordFailure(ctx context.Context, eventID, eventType, message string) error {
	query := `
		INSERT INTO webhook_events (provider_event_id, event_type, processing_error, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (provider_event_id)
		DO UPDATE SET processing_error = EXCLUDED.processing_error
	`

	if _, err := r.db.Pool.Exec(ctx, query, eventID, eventType, message); err != nil {
		return fmt.Errorf("record webhook failure: %w", err)
	}
	return nil
}
