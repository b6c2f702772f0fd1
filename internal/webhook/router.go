package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mwhayford/rentledger/internal/application"
)

// ErrBadPayload marks an event body that could not be decoded into the
// processor's envelope format. Redelivery cannot fix it, so the HTTP layer
// answers 400 instead of 500.
var ErrBadPayload = errors.New("malformed webhook payload")

// HandlerFunc reconciles a single verified, deduplicated event.
type HandlerFunc func(ctx context.Context, env Envelope) error

// FailureJournal is implemented by dedup stores that can record why an
// event keeps failing. Journaling is best-effort.
type FailureJournal interface {
	RecordFailure(ctx context.Context, eventID, eventType, message string) error
}

// Router dispatches events to handlers keyed by event type. Handlers are
// registered once at startup; the dedup store guards against processor
// redelivery before any handler runs.
type Router struct {
	handlers map[string]HandlerFunc
	dedup    application.EventDedup
	logger   *slog.Logger
}

func NewRouter(dedup application.EventDedup, logger *slog.Logger) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		dedup:    dedup,
		logger:   logger,
	}
}

// MustRegister binds eventType to handler. Registering the same type twice
// is a wiring bug, so it panics rather than silently shadowing a handler.
func (r *Router) MustRegister(eventType string, handler HandlerFunc) {
	if eventType == "" {
		panic("webhook: empty event type")
	}
	if handler == nil {
		panic(fmt.Sprintf("webhook: nil handler for %s", eventType))
	}
	if _, exists := r.handlers[eventType]; exists {
		panic(fmt.Sprintf("webhook: duplicate handler for %s", eventType))
	}
	r.handlers[eventType] = handler
}

// Process verifies nothing itself; the HTTP layer has already checked the
// signature. It decodes the envelope, consults the dedup store, dispatches
// to the registered handler, and marks the event processed only after the
// handler succeeds. Returning nil acknowledges the event.
func (r *Router) Process(ctx context.Context, body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if env.ID == "" || env.Type == "" {
		return fmt.Errorf("%w: missing event id or type", ErrBadPayload)
	}

	logger := r.logger.With("event_id", env.ID, "event_type", env.Type)

	seen, err := r.dedup.AlreadyProcessed(ctx, env.ID)
	if err != nil {
		return fmt.Errorf("checking event dedup: %w", err)
	}
	if seen {
		logger.Info("skipping already processed event")
		return nil
	}

	handler, ok := r.handlers[env.Type]
	if !ok {
		logger.Warn("no handler registered for event type, acknowledging")
		return nil
	}

	if err := handler(ctx, env); err != nil {
		logger.Error("event reconciliation failed", "error", err)
		if journal, ok := r.dedup.(FailureJournal); ok {
			if journalErr := journal.RecordFailure(ctx, env.ID, env.Type, err.Error()); journalErr != nil {
				logger.Warn("failed to journal event failure", "error", journalErr)
			}
		}
		return err
	}

	if err := r.dedup.MarkProcessed(ctx, env.ID, env.Type); err != nil {
		// The processor will redeliver; reconcilers are idempotent, so a
		// replayed event settles into the same state.
		return fmt.Errorf("marking event processed: %w", err)
	}

	logger.Info("event reconciled")
	return nil
}
