package services

import (
	"context"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

// QueryService serves read-only aggregate snapshots to the API layer.
type QueryService struct {
	payments      application.PaymentStore
	subscriptions application.SubscriptionStore
	methods       application.PaymentMethodStore
}

func NewQueryService(
	payments application.PaymentStore,
	subscriptions application.SubscriptionStore,
	methods application.PaymentMethodStore,
) *QueryService {
	return &QueryService{
		payments:      payments,
		subscriptions: subscriptions,
		methods:       methods,
	}
}

func (s *QueryService) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return payment, nil
}

func (s *QueryService) ListUserPayments(ctx context.Context, userID string, limit, offset int) ([]*domain.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.payments.FindByUserID(ctx, userID, limit, offset)
}

func (s *QueryService) GetSubscription(ctx context.Context, id string) (*domain.Subscription, error) {
	subscription, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return subscription, nil
}

func (s *QueryService) ListUserSubscriptions(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	return s.subscriptions.FindByUserID(ctx, userID)
}

func (s *QueryService) ListUserPaymentMethods(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	return s.methods.FindByUserID(ctx, userID)
}
