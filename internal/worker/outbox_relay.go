// Package worker hosts the background loops that run alongside the HTTP
// surface.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
	"github.com/mwhayford/rentledger/internal/infrastructure/persistence/postgres"
)

// OutboxRelay drains the outbox table on an interval and hands events to the
// publisher. Publication is at-least-once: an event is marked published only
// after Publish returns, so a crash between the two replays it.
type OutboxRelay struct {
	outbox    *postgres.OutboxRepository
	publisher application.EventPublisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewOutboxRelay(
	outbox *postgres.OutboxRepository,
	publisher application.EventPublisher,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (w *OutboxRelay) Start(ctx context.Context) {
	w.logger.Info("outbox relay started", "interval", w.interval, "batch_size", w.batchSize)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.drainOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox relay stopping")
			return
		case <-ticker.C:
			w.drainOnce(ctx)
		}
	}
}

func (w *OutboxRelay) drainOnce(ctx context.Context) {
	messages, err := w.outbox.FindUnpublished(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to load unpublished events", "error", err)
		return
	}
	if len(messages) == 0 {
		return
	}

	var published int
	for _, message := range messages {
		if ctx.Err() != nil {
			return
		}
		if err := w.relay(ctx, message); err != nil {
			w.logger.Error("failed to relay outbox event",
				"outbox_id", message.ID,
				"event_name", message.EventName,
				"attempts", message.Attempts,
				"error", err)
			continue
		}
		published++
	}

	w.logger.Info("drained outbox batch", "batch", len(messages), "published", published)
}

func (w *OutboxRelay) relay(ctx context.Context, message postgres.OutboxMessage) error {
	if err := w.outbox.RecordAttempt(ctx, message.ID); err != nil {
		return err
	}

	event, err := toDomainEvent(message)
	if err != nil {
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	publish := func() error {
		return w.publisher.Publish(ctx, event)
	}
	if err := backoff.Retry(publish, policy); err != nil {
		return err
	}

	return w.outbox.MarkPublished(ctx, message.ID)
}

func toDomainEvent(message postgres.OutboxMessage) (domain.Event, error) {
	id, err := uuid.Parse(message.ID)
	if err != nil {
		return domain.Event{}, err
	}

	var payload map[string]any
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return domain.Event{}, err
		}
	}

	return domain.Event{
		ID:            id,
		Name:          message.EventName,
		OccurredOn:    message.OccurredOn,
		CorrelationID: message.CorrelationID,
		Payload:       payload,
	}, nil
}
