// Package events carries domain events out of the service. The current
// publisher writes structured log lines; swapping in a message broker only
// requires another application.EventPublisher implementation.
package events

import (
	"context"
	"log/slog"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

type LogPublisher struct {
	logger *slog.Logger
}

var _ application.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	for _, event := range events {
		p.logger.InfoContext(ctx, "domain event published",
			"event_id", event.ID.String(),
			"event_name", event.Name,
			"correlation_id", event.CorrelationID,
			"occurred_on", event.OccurredOn,
			"payload", event.Payload,
		)
	}
	return nil
}
