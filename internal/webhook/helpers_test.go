package webhook_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventBody(t *testing.T, id, eventType string, object any) []byte {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{
		"id":   id,
		"type": eventType,
		"data": map[string]any{"object": json.RawMessage(raw)},
	})
	require.NoError(t, err)
	return body
}

type memDedup struct {
	processed map[string]string
	failures  []string
	checkErr  error
	markErr   error
}

func newMemDedup() *memDedup {
	return &memDedup{processed: make(map[string]string)}
}

func (d *memDedup) AlreadyProcessed(_ context.Context, eventID string) (bool, error) {
	if d.checkErr != nil {
		return false, d.checkErr
	}
	_, ok := d.processed[eventID]
	return ok, nil
}

func (d *memDedup) MarkProcessed(_ context.Context, eventID, eventType string) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.processed[eventID] = eventType
	return nil
}

func (d *memDedup) RecordFailure(_ context.Context, eventID, _, message string) error {
	d.failures = append(d.failures, eventID+": "+message)
	return nil
}

type memPaymentStore struct {
	payments []*domain.Payment
	events   []domain.Event
	updates  int
}

func (s *memPaymentStore) Create(_ context.Context, payment *domain.Payment) error {
	if payment.ProcessorIntentID != nil {
		for _, p := range s.payments {
			if p.ProcessorIntentID != nil && *p.ProcessorIntentID == *payment.ProcessorIntentID {
				return application.ErrDuplicateProcessorRef
			}
		}
	}
	s.payments = append(s.payments, payment)
	s.events = append(s.events, payment.PullEvents()...)
	return nil
}

func (s *memPaymentStore) Update(_ context.Context, payment *domain.Payment) error {
	s.updates++
	s.events = append(s.events, payment.PullEvents()...)
	return nil
}

func (s *memPaymentStore) FindByID(_ context.Context, id string) (*domain.Payment, error) {
	for _, p := range s.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(id)
}

func (s *memPaymentStore) FindByProcessorRef(_ context.Context, ref string) (*domain.Payment, error) {
	for _, p := range s.payments {
		if p.ProcessorIntentID != nil && *p.ProcessorIntentID == ref {
			return p, nil
		}
		if p.ProcessorChargeID != nil && *p.ProcessorChargeID == ref {
			return p, nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(ref)
}

func (s *memPaymentStore) FindByUserID(_ context.Context, userID string, _, _ int) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memSubscriptionStore struct {
	subscriptions []*domain.Subscription
	updates       int
}

func (s *memSubscriptionStore) Create(_ context.Context, sub *domain.Subscription) error {
	s.subscriptions = append(s.subscriptions, sub)
	sub.PullEvents()
	return nil
}

func (s *memSubscriptionStore) Update(_ context.Context, sub *domain.Subscription) error {
	s.updates++
	sub.PullEvents()
	return nil
}

func (s *memSubscriptionStore) FindByID(_ context.Context, id string) (*domain.Subscription, error) {
	for _, sub := range s.subscriptions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, domain.NewSubscriptionNotFoundError(id)
}

func (s *memSubscriptionStore) FindByProcessorRef(_ context.Context, ref string) (*domain.Subscription, error) {
	for _, sub := range s.subscriptions {
		if sub.ProcessorSubscriptionID != nil && *sub.ProcessorSubscriptionID == ref {
			return sub, nil
		}
	}
	return nil, domain.NewSubscriptionNotFoundError(ref)
}

func (s *memSubscriptionStore) FindByUserID(_ context.Context, userID string) ([]*domain.Subscription, error) {
	var out []*domain.Subscription
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func seedProcessingPayment(t *testing.T, store *memPaymentStore, intentID string) *domain.Payment {
	t.Helper()
	payment, err := domain.NewPayment(fmt.Sprintf("pay-%s", intentID), "user-1",
		domain.MustMoney("100.00", "USD"), domain.MethodCard)
	require.NoError(t, err)
	require.NoError(t, payment.Process(intentID))
	require.NoError(t, store.Create(context.Background(), payment))
	return payment
}

func seedActiveSubscription(t *testing.T, store *memSubscriptionStore, processorRef string) *domain.Subscription {
	t.Helper()
	sub, err := domain.NewSubscription(fmt.Sprintf("sub-%s", processorRef), "user-1",
		"plan-pro", domain.MustMoney("29.99", "USD"))
	require.NoError(t, err)
	sub.AttachProcessorRefs(processorRef, "cus_1")
	require.NoError(t, sub.Activate(
		mustTime(t, "2026-08-01T00:00:00Z"), mustTime(t, "2026-09-01T00:00:00Z")))
	require.NoError(t, store.Create(context.Background(), sub))
	return sub
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}
