package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

type SubscriptionService struct {
	subscriptions application.SubscriptionStore
	payments      application.PaymentStore
	processor     application.ProcessorClient
	logger        *slog.Logger
}

func NewSubscriptionService(
	subscriptions application.SubscriptionStore,
	payments application.PaymentStore,
	processor application.ProcessorClient,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		payments:      payments,
		processor:     processor,
		logger:        logger,
	}
}

// ProcessSubscriptionPayment creates a local subscription, registers it with
// the processor and synthesizes the companion payment for the first billing
// cycle. Unlike ProcessPayment, a gateway failure here cancels the local
// subscription and propagates: the caller asked for a recurring arrangement
// and did not get one.
func (s *SubscriptionService) ProcessSubscriptionPayment(ctx context.Context, cmd ProcessSubscriptionPaymentCommand) (*domain.Subscription, error) {
	amount, err := domain.NewMoney(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	subscription, err := domain.NewSubscription(uuid.New().String(), cmd.UserID, cmd.PlanID, amount)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	if err := s.subscriptions.Create(ctx, subscription); err != nil {
		return nil, application.NewInternalError(err)
	}

	resp, err := s.processor.CreateSubscription(ctx, application.SubscriptionRequest{
		CustomerRef: cmd.UserID,
		PlanRef:     cmd.PlanID,
		MethodRef:   cmd.MethodID,
		Metadata:    map[string]string{"subscription_id": subscription.ID},
	})
	if err != nil {
		s.logger.Warn("subscription creation failed at processor",
			"subscription_id", subscription.ID,
			"user_id", cmd.UserID,
			"error", err,
		)
		if cancelErr := subscription.Cancel(); cancelErr != nil {
			s.logger.Error("failed to cancel local subscription", "subscription_id", subscription.ID, "error", cancelErr)
		} else if saveErr := s.subscriptions.Update(ctx, subscription); saveErr != nil {
			s.logger.Error("failed to persist cancelled subscription", "subscription_id", subscription.ID, "error", saveErr)
		}
		return nil, application.NewGatewayError(err)
	}

	subscription.AttachProcessorRefs(resp.ID, resp.CustomerID)

	now := time.Now().UTC()
	switch resp.Status {
	case application.ProcessorStatusActive:
		if err := subscription.Activate(now, resp.CurrentPeriodEnd); err != nil {
			return nil, application.NewInvalidStateError(err)
		}
	case application.ProcessorStatusTrialing:
		if err := subscription.StartTrial(now, resp.CurrentPeriodEnd); err != nil {
			return nil, application.NewInvalidStateError(err)
		}
	default:
		s.logger.Warn("unexpected processor subscription status",
			"subscription_id", subscription.ID,
			"status", resp.Status,
		)
	}

	if err := s.subscriptions.Update(ctx, subscription); err != nil {
		return nil, application.NewInternalError(err)
	}

	// The actual billing event arrives later via invoice webhooks; record
	// the initial charge as an already-succeeded payment now so the user's
	// ledger shows what they were billed.
	if subscription.Status == domain.SubscriptionActive {
		if err := s.recordInitialCharge(ctx, subscription, cmd.MethodID); err != nil {
			s.logger.Error("failed to record initial subscription charge",
				"subscription_id", subscription.ID,
				"error", err,
			)
		}
	}

	return subscription, nil
}

func (s *SubscriptionService) recordInitialCharge(ctx context.Context, subscription *domain.Subscription, methodID *string) error {
	payment, err := domain.NewPayment(uuid.New().String(), subscription.UserID, subscription.Amount, domain.MethodCard)
	if err != nil {
		return err
	}
	payment.MethodID = methodID
	description := fmt.Sprintf("Subscription payment for plan %s", subscription.PlanID)
	payment.Description = &description
	if subscription.ProcessorSubscriptionID != nil {
		payment.ProcessorIntentID = subscription.ProcessorSubscriptionID
	}
	if err := payment.Succeed(); err != nil {
		return err
	}
	return s.payments.Create(ctx, payment)
}

// Cancel cancels the subscription at the processor first, then locally.
// Returns false when the processor refuses or the local record is already
// terminal.
func (s *SubscriptionService) Cancel(ctx context.Context, subscriptionID string) (bool, error) {
	subscription, err := s.subscriptions.FindByID(ctx, subscriptionID)
	if err != nil {
		return false, mapStoreError(err)
	}

	if subscription.ProcessorSubscriptionID != nil {
		if err := s.processor.CancelSubscription(ctx, *subscription.ProcessorSubscriptionID); err != nil {
			s.logger.Warn("processor subscription cancel failed",
				"subscription_id", subscriptionID,
				"error", err,
			)
			return false, nil
		}
	}

	if err := subscription.Cancel(); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeInvalidTransition) {
			return false, nil
		}
		return false, application.NewInvalidStateError(err)
	}

	if err := s.subscriptions.Update(ctx, subscription); err != nil {
		return false, application.NewInternalError(err)
	}
	return true, nil
}
