package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/application/services"
	"github.com/mwhayford/rentledger/internal/domain"
)

func defaultSubscriptionCommand() services.ProcessSubscriptionPaymentCommand {
	return services.ProcessSubscriptionPaymentCommand{
		UserID:   "user-1",
		PlanID:   "plan-pro",
		Amount:   decimal.RequireFromString("29.99"),
		Currency: "USD",
	}
}

func TestProcessSubscriptionPayment(t *testing.T) {
	ctx := context.Background()
	periodEnd := time.Now().UTC().AddDate(0, 1, 0)

	t.Run("active subscription records initial charge and event", func(t *testing.T) {
		subStore := &memSubscriptionStore{}
		payStore := &memPaymentStore{}
		processor := &mockProcessorClient{}
		service := services.NewSubscriptionService(subStore, payStore, processor, testLogger())

		processor.On("CreateSubscription", mock.Anything, mock.Anything).
			Return(&application.SubscriptionResponse{
				ID:               "sub_proc_1",
				CustomerID:       "cus_1",
				Status:           application.ProcessorStatusActive,
				CurrentPeriodEnd: periodEnd,
			}, nil).Once()

		subscription, err := service.ProcessSubscriptionPayment(ctx, defaultSubscriptionCommand())

		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionActive, subscription.Status)
		require.NotNil(t, subscription.ProcessorSubscriptionID)
		assert.Equal(t, "sub_proc_1", *subscription.ProcessorSubscriptionID)

		require.Len(t, subStore.events, 1)
		assert.Equal(t, domain.EventSubscriptionCreated, subStore.events[0].Name)

		require.Len(t, payStore.payments, 1)
		initial := payStore.payments[0]
		assert.Equal(t, domain.PaymentSucceeded, initial.Status)
		assert.True(t, initial.Amount.Equal(subscription.Amount))
		require.NotNil(t, initial.Description)
		assert.Contains(t, *initial.Description, "plan-pro")
		processor.AssertExpectations(t)
	})

	t.Run("trialing subscription defers the first charge", func(t *testing.T) {
		subStore := &memSubscriptionStore{}
		payStore := &memPaymentStore{}
		processor := &mockProcessorClient{}
		service := services.NewSubscriptionService(subStore, payStore, processor, testLogger())

		processor.On("CreateSubscription", mock.Anything, mock.Anything).
			Return(&application.SubscriptionResponse{
				ID:               "sub_proc_2",
				CustomerID:       "cus_1",
				Status:           application.ProcessorStatusTrialing,
				CurrentPeriodEnd: periodEnd,
			}, nil).Once()

		subscription, err := service.ProcessSubscriptionPayment(ctx, defaultSubscriptionCommand())

		require.NoError(t, err)
		assert.Equal(t, domain.SubscriptionTrialing, subscription.Status)
		assert.Empty(t, payStore.payments)
		assert.Empty(t, subStore.events)
	})

	t.Run("gateway failure cancels local record and propagates", func(t *testing.T) {
		subStore := &memSubscriptionStore{}
		payStore := &memPaymentStore{}
		processor := &mockProcessorClient{}
		service := services.NewSubscriptionService(subStore, payStore, processor, testLogger())

		processor.On("CreateSubscription", mock.Anything, mock.Anything).
			Return(nil, errors.New("processor unavailable")).Once()

		_, err := service.ProcessSubscriptionPayment(ctx, defaultSubscriptionCommand())

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeGateway, svcErr.Code)

		require.Len(t, subStore.subscriptions, 1)
		assert.Equal(t, domain.SubscriptionCanceled, subStore.subscriptions[0].Status)
		assert.Empty(t, payStore.payments)
	})

	t.Run("rejects invalid amount before any writes", func(t *testing.T) {
		subStore := &memSubscriptionStore{}
		processor := &mockProcessorClient{}
		service := services.NewSubscriptionService(subStore, &memPaymentStore{}, processor, testLogger())

		cmd := defaultSubscriptionCommand()
		cmd.Amount = decimal.RequireFromString("-1.00")

		_, err := service.ProcessSubscriptionPayment(ctx, cmd)

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code)
		assert.Empty(t, subStore.subscriptions)
	})
}

func TestCancelSubscription(t *testing.T) {
	ctx := context.Background()

	activeSubscription := func(t *testing.T, store *memSubscriptionStore) *domain.Subscription {
		t.Helper()
		sub, err := domain.NewSubscription("sub-1", "user-1", "plan-pro", domain.MustMoney("29.99", "USD"))
		require.NoError(t, err)
		sub.AttachProcessorRefs("sub_proc_1", "cus_1")
		require.NoError(t, sub.Activate(time.Now().UTC(), time.Now().UTC().AddDate(0, 1, 0)))
		require.NoError(t, store.Create(ctx, sub))
		return sub
	}

	t.Run("cancels at processor then locally", func(t *testing.T) {
		store := &memSubscriptionStore{}
		processor := &mockProcessorClient{}
		service := services.NewSubscriptionService(store, &memPaymentStore{}, processor, testLogger())
		sub := activeSubscription(t, store)

		processor.On("CancelSubscription", mock.Anything, "sub_proc_1").Return(nil).Once()

		cancelled, err := service.Cancel(ctx, "sub-1")

		require.NoError(t, err)
		assert.True(t, cancelled)
		assert.Equal(t, domain.SubscriptionCanceled, sub.Status)
		processor.AssertExpectations(t)
	})

	t.Run("processor refusal leaves local record untouched", func(t *testing.T) {
		store := &memSubscriptionStore{}
		processor := &mockProcessorClient{}
		service := services.NewSubscriptionService(store, &memPaymentStore{}, processor, testLogger())
		sub := activeSubscription(t, store)

		processor.On("CancelSubscription", mock.Anything, "sub_proc_1").
			Return(errors.New("already canceled upstream")).Once()

		cancelled, err := service.Cancel(ctx, "sub-1")

		require.NoError(t, err)
		assert.False(t, cancelled)
		assert.Equal(t, domain.SubscriptionActive, sub.Status)
	})

	t.Run("already canceled reports false", func(t *testing.T) {
		store := &memSubscriptionStore{}
		processor := &mockProcessorClient{}
		service := services.NewSubscriptionService(store, &memPaymentStore{}, processor, testLogger())
		sub := activeSubscription(t, store)
		require.NoError(t, sub.Cancel())

		processor.On("CancelSubscription", mock.Anything, "sub_proc_1").Return(nil).Once()

		cancelled, err := service.Cancel(ctx, "sub-1")

		require.NoError(t, err)
		assert.False(t, cancelled)
	})

	t.Run("unknown subscription maps to not found", func(t *testing.T) {
		service := services.NewSubscriptionService(&memSubscriptionStore{}, &memPaymentStore{}, &mockProcessorClient{}, testLogger())

		_, err := service.Cancel(ctx, "nope")

		svcErr, ok := application.IsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrCodeNotFound, svcErr.Code)
	})
}
