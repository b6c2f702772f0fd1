package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

type mockProcessorClient struct {
	mock.Mock
}

func (m *mockProcessorClient) CreateCharge(ctx context.Context, req application.ChargeRequest) (*application.ChargeResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*application.ChargeResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessorClient) CreateSubscription(ctx context.Context, req application.SubscriptionRequest) (*application.SubscriptionResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*application.SubscriptionResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessorClient) Refund(ctx context.Context, req application.RefundRequest) (*application.RefundResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*application.RefundResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessorClient) CancelSubscription(ctx context.Context, subscriptionRef string) error {
	args := m.Called(ctx, subscriptionRef)
	return args.Error(0)
}

// memPaymentStore keeps payments in insertion order and captures events the
// way the real store drains them into the outbox.
type memPaymentStore struct {
	payments []*domain.Payment
	events   []domain.Event
}

func (s *memPaymentStore) Create(_ context.Context, payment *domain.Payment) error {
	s.payments = append(s.payments, payment)
	s.events = append(s.events, payment.PullEvents()...)
	return nil
}

func (s *memPaymentStore) Update(_ context.Context, payment *domain.Payment) error {
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

func (s *memPaymentStore) FindByUserID(_ context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
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
	events        []domain.Event
}

func (s *memSubscriptionStore) Create(_ context.Context, sub *domain.Subscription) error {
	s.subscriptions = append(s.subscriptions, sub)
	s.events = append(s.events, sub.PullEvents()...)
	return nil
}

func (s *memSubscriptionStore) Update(_ context.Context, sub *domain.Subscription) error {
	s.events = append(s.events, sub.PullEvents()...)
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

type memMethodStore struct {
	methods []*domain.PaymentMethod
}

func (s *memMethodStore) Create(_ context.Context, method *domain.PaymentMethod) error {
	s.methods = append(s.methods, method)
	return nil
}

func (s *memMethodStore) Update(_ context.Context, _ *domain.PaymentMethod) error {
	return nil
}

func (s *memMethodStore) FindByID(_ context.Context, id string) (*domain.PaymentMethod, error) {
	for _, m := range s.methods {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.NewMethodNotFoundError(id)
}

func (s *memMethodStore) FindByUserID(_ context.Context, userID string) ([]*domain.PaymentMethod, error) {
	var out []*domain.PaymentMethod
	for _, m := range s.methods {
		if m.UserID == userID && m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memMethodStore) SetDefault(_ context.Context, userID, methodID string) error {
	for _, m := range s.methods {
		if m.UserID == userID && m.IsActive {
			m.IsDefault = m.ID == methodID
		}
	}
	return nil
}
