package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

// SubscriptionReconciler applies subscription lifecycle and invoice events.
// Processor status strings are mapped onto local transitions; a transition
// the legality table rejects is treated as a stale or out-of-order event and
// acknowledged, since redelivery would reject it forever.
type SubscriptionReconciler struct {
	subscriptions application.SubscriptionStore
	payments      application.PaymentStore
	logger        *slog.Logger
}

func NewSubscriptionReconciler(
	subscriptions application.SubscriptionStore,
	payments application.PaymentStore,
	logger *slog.Logger,
) *SubscriptionReconciler {
	return &SubscriptionReconciler{
		subscriptions: subscriptions,
		payments:      payments,
		logger:        logger,
	}
}

func (r *SubscriptionReconciler) Register(router *Router) {
	router.MustRegister(TypeSubscriptionCreated, r.handleSubscriptionChanged)
	router.MustRegister(TypeSubscriptionUpdated, r.handleSubscriptionChanged)
	router.MustRegister(TypeSubscriptionDeleted, r.handleSubscriptionDeleted)
	router.MustRegister(TypeInvoicePaid, r.handleInvoicePaid)
	router.MustRegister(TypeInvoiceFailed, r.handleInvoiceFailed)
}

func (r *SubscriptionReconciler) handleSubscriptionChanged(ctx context.Context, env Envelope) error {
	var obj SubscriptionObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding subscription object: %v", ErrBadPayload, err)
	}

	sub, found, err := r.findSubscription(ctx, obj.ID)
	if err != nil {
		return err
	}
	if !found {
		r.logger.Warn("subscription event for unknown subscription, acknowledging",
			"processor_subscription_id", obj.ID, "event_type", env.Type)
		return nil
	}

	if err := r.applyStatus(sub, obj); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeInvalidTransition) {
			r.logger.Warn("ignoring out-of-order subscription event",
				"subscription_id", sub.ID, "local_status", string(sub.Status),
				"processor_status", obj.Status)
			return nil
		}
		return err
	}
	return r.subscriptions.Update(ctx, sub)
}

func (r *SubscriptionReconciler) applyStatus(sub *domain.Subscription, obj SubscriptionObject) error {
	switch obj.Status {
	case "active":
		return sub.Activate(unixTime(obj.CurrentPeriodStart), unixTime(obj.CurrentPeriodEnd))
	case "trialing":
		return sub.StartTrial(unixTime(obj.TrialStart), unixTime(obj.TrialEnd))
	case "past_due":
		return sub.MarkPastDue()
	case "unpaid":
		return sub.MarkUnpaid()
	case "canceled":
		return sub.Cancel()
	case "paused":
		return sub.Pause()
	default:
		r.logger.Warn("unrecognized processor subscription status",
			"subscription_id", sub.ID, "processor_status", obj.Status)
		return nil
	}
}

func (r *SubscriptionReconciler) handleSubscriptionDeleted(ctx context.Context, env Envelope) error {
	var obj SubscriptionObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding subscription object: %v", ErrBadPayload, err)
	}

	sub, found, err := r.findSubscription(ctx, obj.ID)
	if err != nil {
		return err
	}
	if !found {
		r.logger.Warn("subscription.deleted for unknown subscription, acknowledging",
			"processor_subscription_id", obj.ID)
		return nil
	}

	if err := sub.Cancel(); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeInvalidTransition) {
			// Already canceled locally; the redelivered event is spent.
			return nil
		}
		return err
	}
	return r.subscriptions.Update(ctx, sub)
}

// handleInvoicePaid records a settled renewal charge as a succeeded payment
// on the subscriber's ledger and refreshes the billing period.
func (r *SubscriptionReconciler) handleInvoicePaid(ctx context.Context, env Envelope) error {
	var obj InvoiceObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding invoice object: %v", ErrBadPayload, err)
	}

	sub, found, err := r.findSubscription(ctx, obj.Subscription)
	if err != nil {
		return err
	}
	if !found {
		r.logger.Warn("invoice.paid for unknown subscription, acknowledging",
			"processor_subscription_id", obj.Subscription, "invoice_id", obj.ID)
		return nil
	}

	amount, err := r.invoiceAmount(obj, sub)
	if err != nil {
		return err
	}

	payment, err := domain.NewPayment(uuid.NewString(), sub.UserID, amount, domain.MethodCard)
	if err != nil {
		return fmt.Errorf("building renewal payment for subscription %s: %w", sub.ID, err)
	}
	description := fmt.Sprintf("Subscription payment for plan %s", sub.PlanID)
	payment.Description = &description
	payment.ProcessorIntentID = &obj.ID
	if err := payment.Succeed(); err != nil {
		return fmt.Errorf("settling renewal payment for subscription %s: %w", sub.ID, err)
	}
	if err := r.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, application.ErrDuplicateProcessorRef) {
			// Redelivered invoice under a fresh event id; the renewal is
			// already in the ledger.
			r.logger.Info("renewal payment already recorded",
				"subscription_id", sub.ID, "invoice_id", obj.ID)
		} else {
			return fmt.Errorf("recording renewal payment for subscription %s: %w", sub.ID, err)
		}
	}

	if obj.PeriodStart > 0 && obj.PeriodEnd > 0 {
		if err := sub.Activate(unixTime(obj.PeriodStart), unixTime(obj.PeriodEnd)); err != nil {
			if domain.IsErrorCode(err, domain.ErrCodeInvalidTransition) {
				r.logger.Warn("invoice.paid could not refresh subscription period",
					"subscription_id", sub.ID, "local_status", string(sub.Status))
				return nil
			}
			return err
		}
		return r.subscriptions.Update(ctx, sub)
	}
	return nil
}

// handleInvoiceFailed only observes. Dunning state arrives through
// customer.subscription.updated with status past_due, so the invoice event
// carries no state of its own to apply.
func (r *SubscriptionReconciler) handleInvoiceFailed(_ context.Context, env Envelope) error {
	var obj InvoiceObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding invoice object: %v", ErrBadPayload, err)
	}
	r.logger.Warn("invoice payment failed at processor",
		"invoice_id", obj.ID, "processor_subscription_id", obj.Subscription)
	return nil
}

func (r *SubscriptionReconciler) invoiceAmount(obj InvoiceObject, sub *domain.Subscription) (domain.Money, error) {
	if obj.AmountPaid == "" {
		return sub.Amount, nil
	}
	value, err := decimal.NewFromString(obj.AmountPaid)
	if err != nil {
		return domain.Money{}, fmt.Errorf("%w: invalid invoice amount %q: %v", ErrBadPayload, obj.AmountPaid, err)
	}
	currency := obj.Currency
	if currency == "" {
		currency = sub.Amount.Currency
	}
	return domain.NewMoney(value, currency)
}

func (r *SubscriptionReconciler) findSubscription(ctx context.Context, ref string) (*domain.Subscription, bool, error) {
	if ref == "" {
		return nil, false, nil
	}
	sub, err := r.subscriptions.FindByProcessorRef(ctx, ref)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeSubscriptionNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up subscription by ref %s: %w", ref, err)
	}
	return sub, true, nil
}
