package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

// PaymentReconciler applies charge and payment-intent events to payment
// records. Every handler is idempotent: terminal transitions repeated by
// processor redelivery are absorbed without error.
type PaymentReconciler struct {
	payments application.PaymentStore
	logger   *slog.Logger
}

func NewPaymentReconciler(payments application.PaymentStore, logger *slog.Logger) *PaymentReconciler {
	return &PaymentReconciler{payments: payments, logger: logger}
}

func (r *PaymentReconciler) Register(router *Router) {
	router.MustRegister(TypeChargeSucceeded, r.handleChargeSucceeded)
	router.MustRegister(TypeChargeFailed, r.handleChargeFailed)
	router.MustRegister(TypeIntentSucceeded, r.handleIntentSucceeded)
	router.MustRegister(TypeIntentFailed, r.handleIntentFailed)
	router.MustRegister(TypeMethodAttached, r.handleMethodAttached)
}

func (r *PaymentReconciler) handleChargeSucceeded(ctx context.Context, env Envelope) error {
	var obj ChargeObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding charge object: %v", ErrBadPayload, err)
	}

	payment, found, err := r.findPayment(ctx, obj.PaymentIntent, obj.ID)
	if err != nil {
		return err
	}
	if !found {
		r.logger.Warn("charge.succeeded for unknown payment, acknowledging",
			"charge_id", obj.ID, "intent_id", obj.PaymentIntent)
		return nil
	}

	payment.AttachCharge(obj.ID)
	if err := payment.Succeed(); err != nil {
		return fmt.Errorf("marking payment %s succeeded: %w", payment.ID, err)
	}
	return r.payments.Update(ctx, payment)
}

func (r *PaymentReconciler) handleChargeFailed(ctx context.Context, env Envelope) error {
	var obj ChargeObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding charge object: %v", ErrBadPayload, err)
	}

	payment, found, err := r.findPayment(ctx, obj.PaymentIntent, obj.ID)
	if err != nil {
		return err
	}
	if !found {
		r.logger.Warn("charge.failed for unknown payment, acknowledging",
			"charge_id", obj.ID, "intent_id", obj.PaymentIntent)
		return nil
	}

	reason := obj.FailureMessage
	if reason == "" {
		reason = "charge failed at processor"
	}
	payment.AttachCharge(obj.ID)
	if err := payment.Fail(reason); err != nil {
		return fmt.Errorf("marking payment %s failed: %w", payment.ID, err)
	}
	return r.payments.Update(ctx, payment)
}

func (r *PaymentReconciler) handleIntentSucceeded(ctx context.Context, env Envelope) error {
	var obj PaymentIntentObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding payment intent object: %v", ErrBadPayload, err)
	}

	payment, found, err := r.findPayment(ctx, obj.ID, "")
	if err != nil {
		return err
	}
	if !found {
		r.logger.Warn("payment_intent.succeeded for unknown payment, acknowledging",
			"intent_id", obj.ID)
		return nil
	}

	if obj.LatestCharge != "" {
		payment.AttachCharge(obj.LatestCharge)
	}
	if err := payment.Succeed(); err != nil {
		return fmt.Errorf("marking payment %s succeeded: %w", payment.ID, err)
	}
	return r.payments.Update(ctx, payment)
}

func (r *PaymentReconciler) handleIntentFailed(ctx context.Context, env Envelope) error {
	var obj PaymentIntentObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding payment intent object: %v", ErrBadPayload, err)
	}

	payment, found, err := r.findPayment(ctx, obj.ID, "")
	if err != nil {
		return err
	}
	if !found {
		r.logger.Warn("payment_intent.payment_failed for unknown payment, acknowledging",
			"intent_id", obj.ID)
		return nil
	}

	reason := obj.LastPaymentError
	if reason == "" {
		reason = "payment failed at processor"
	}
	if err := payment.Fail(reason); err != nil {
		return fmt.Errorf("marking payment %s failed: %w", payment.ID, err)
	}
	return r.payments.Update(ctx, payment)
}

// handleMethodAttached only observes: instruments are created through the
// command surface, so processor-side attachment carries no state to apply.
func (r *PaymentReconciler) handleMethodAttached(_ context.Context, env Envelope) error {
	var obj PaymentMethodObject
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return fmt.Errorf("%w: decoding payment method object: %v", ErrBadPayload, err)
	}
	r.logger.Info("payment method attached at processor",
		"processor_method_id", obj.ID, "customer", obj.Customer, "method_type", obj.Type)
	return nil
}

// findPayment correlates by intent id first, falling back to the charge id.
// A payment absent from the ledger is not an error: events can arrive for
// charges created outside this service.
func (r *PaymentReconciler) findPayment(ctx context.Context, intentID, chargeID string) (*domain.Payment, bool, error) {
	for _, ref := range []string{intentID, chargeID} {
		if ref == "" {
			continue
		}
		payment, err := r.payments.FindByProcessorRef(ctx, ref)
		if err == nil {
			return payment, true, nil
		}
		if !domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, false, fmt.Errorf("looking up payment by ref %s: %w", ref, err)
		}
	}
	return nil, false, nil
}
