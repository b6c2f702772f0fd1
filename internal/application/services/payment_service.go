package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

type PaymentService struct {
	payments  application.PaymentStore
	processor application.ProcessorClient
	logger    *slog.Logger
}

func NewPaymentService(
	payments application.PaymentStore,
	processor application.ProcessorClient,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		processor: processor,
		logger:    logger,
	}
}

// ProcessPayment creates a charge against the processor and records the
// outcome. Gateway failures are downgraded to a persisted FAILED payment;
// past input validation this command never returns the processor's error to
// the caller.
func (s *PaymentService) ProcessPayment(ctx context.Context, cmd ProcessPaymentCommand) (*domain.Payment, error) {
	amount, err := domain.NewMoney(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	payment, err := domain.NewPayment(uuid.New().String(), cmd.UserID, amount, cmd.MethodType)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}
	payment.MethodID = cmd.MethodID
	payment.Description = cmd.Description

	resp, err := s.processor.CreateCharge(ctx, application.ChargeRequest{
		Amount:    amount.Amount.String(),
		Currency:  amount.Currency,
		MethodRef: cmd.MethodID,
		Metadata:  map[string]string{"payment_id": payment.ID, "user_id": payment.UserID},
	})
	if err != nil {
		s.logger.Warn("charge creation failed",
			"payment_id", payment.ID,
			"user_id", payment.UserID,
			"error", err,
		)
		if failErr := payment.Fail(err.Error()); failErr != nil {
			return nil, application.NewInternalError(failErr)
		}
		if saveErr := s.payments.Create(ctx, payment); saveErr != nil {
			return nil, application.NewInternalError(saveErr)
		}
		return payment, nil
	}

	if err := payment.Process(resp.ID); err != nil {
		return nil, application.NewInvalidStateError(err)
	}

	switch resp.Status {
	case application.ProcessorStatusSucceeded:
		if err := payment.Succeed(); err != nil {
			return nil, application.NewInvalidStateError(err)
		}
	case application.ProcessorStatusRequiresAction:
		// Stays PROCESSING; the payment_intent webhook finishes the
		// transition once the user completes the charge out-of-band.
	default:
		if err := payment.Fail(fmt.Sprintf("charge returned status %q", resp.Status)); err != nil {
			return nil, application.NewInvalidStateError(err)
		}
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, application.NewInternalError(err)
	}
	return payment, nil
}

// Refund sends a refund to the processor and transitions the payment to
// REFUNDED or PARTIALLY_REFUNDED depending on how much of the charge remains.
func (s *PaymentService) Refund(ctx context.Context, cmd RefundPaymentCommand) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	chargeRef := payment.ProcessorChargeID
	if chargeRef == nil {
		chargeRef = payment.ProcessorIntentID
	}
	if chargeRef == nil {
		return nil, application.NewInvalidStateError(domain.NewMissingDependencyError("processor charge reference"))
	}

	var refundAmount *domain.Money
	if cmd.Amount != nil {
		m, err := domain.NewMoney(*cmd.Amount, cmd.Currency)
		if err != nil {
			return nil, application.NewInvalidInputError(err)
		}
		if m.Currency != payment.Amount.Currency {
			return nil, application.NewInvalidInputError(
				domain.NewCurrencyMismatchError(m.Currency, payment.Amount.Currency))
		}
		refundAmount = &m
	}

	req := application.RefundRequest{ChargeRef: *chargeRef, Currency: payment.Amount.Currency}
	if refundAmount != nil {
		a := refundAmount.Amount.String()
		req.Amount = &a
	}
	if _, err := s.processor.Refund(ctx, req); err != nil {
		return nil, application.NewGatewayError(err)
	}

	if refundAmount == nil {
		err = payment.Refund()
	} else {
		err = payment.PartialRefund(*refundAmount)
	}
	if err != nil {
		return nil, application.NewInvalidStateError(err)
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, application.NewInternalError(err)
	}
	return payment, nil
}

// Cancel cancels a pending payment locally. No processor call is involved;
// the charge was never settled. Returns false when the payment is past the
// point of cancellation.
func (s *PaymentService) Cancel(ctx context.Context, paymentID string) (bool, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return false, mapStoreError(err)
	}

	if err := payment.Cancel(); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeInvalidTransition) {
			return false, nil
		}
		return false, application.NewInvalidStateError(err)
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		return false, application.NewInternalError(err)
	}
	return true, nil
}

func mapStoreError(err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodePaymentNotFound, domain.ErrCodeSubscriptionNotFound, domain.ErrCodeMethodNotFound:
			return application.NewNotFoundError(err)
		}
	}
	return application.NewInternalError(err)
}
