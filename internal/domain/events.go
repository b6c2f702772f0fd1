package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event names published to downstream collaborators (email, search, analytics).
const (
	EventPaymentProcessed    = "PaymentProcessed"
	EventPaymentFailed       = "PaymentFailed"
	EventSubscriptionCreated = "SubscriptionCreated"
)

// Event is an immutable fact recorded at the moment of a state transition.
// Events accumulate on an aggregate only between load and save; the
// persistence layer drains them into the outbox in the same transaction as
// the state write.
type Event struct {
	ID            uuid.UUID
	Name          string
	OccurredOn    time.Time
	CorrelationID string
	Payload       map[string]any
}

func newEvent(name, correlationID string, payload map[string]any) Event {
	return Event{
		ID:            uuid.New(),
		Name:          name,
		OccurredOn:    time.Now().UTC(),
		CorrelationID: correlationID,
		Payload:       payload,
	}
}

// eventRecorder is embedded by aggregates that emit domain events.
type eventRecorder struct {
	pending []Event
}

func (r *eventRecorder) record(e Event) {
	r.pending = append(r.pending, e)
}

// PullEvents returns the pending events and clears the queue. Callers own
// delivery from that point on.
func (r *eventRecorder) PullEvents() []Event {
	events := r.pending
	r.pending = nil
	return events
}

// PendingEventCount reports queued events without draining them.
func (r *eventRecorder) PendingEventCount() int {
	return len(r.pending)
}
