package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

type PaymentMethodService struct {
	methods application.PaymentMethodStore
	logger  *slog.Logger
}

func NewPaymentMethodService(methods application.PaymentMethodStore, logger *slog.Logger) *PaymentMethodService {
	return &PaymentMethodService{methods: methods, logger: logger}
}

func (s *PaymentMethodService) Create(ctx context.Context, cmd CreatePaymentMethodCommand) (*domain.PaymentMethod, error) {
	method, err := domain.NewPaymentMethod(uuid.New().String(), cmd.UserID, cmd.Type)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	switch cmd.Type {
	case domain.MethodBankAccount:
		method.AttachBankDetails(cmd.ProcessorMethodID, cmd.LastFourDigits, cmd.BankName)
	default:
		method.AttachCardDetails(cmd.ProcessorMethodID, cmd.LastFourDigits, cmd.Brand)
	}

	if err := s.methods.Create(ctx, method); err != nil {
		return nil, application.NewInternalError(err)
	}

	if cmd.MakeDefault {
		if err := s.methods.SetDefault(ctx, cmd.UserID, method.ID); err != nil {
			return nil, application.NewInternalError(err)
		}
		method.IsDefault = true
	}
	return method, nil
}

// SetDefault makes one method the user's default. The store performs the
// clear-and-set as a single conditional update, so there is no window where
// two methods are both default.
func (s *PaymentMethodService) SetDefault(ctx context.Context, userID, methodID string) (*domain.PaymentMethod, error) {
	method, err := s.methods.FindByID(ctx, methodID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if method.UserID != userID {
		return nil, application.NewNotFoundError(domain.NewMethodNotFoundError(methodID))
	}
	if !method.IsActive {
		return nil, application.NewInvalidStateError(domain.NewInvalidTransitionError("INACTIVE", "DEFAULT"))
	}

	if err := s.methods.SetDefault(ctx, userID, methodID); err != nil {
		return nil, application.NewInternalError(err)
	}
	method.IsDefault = true
	return method, nil
}

// Delete deactivates a stored method. Rows are never removed; the method
// stops being usable and loses its default flag.
func (s *PaymentMethodService) Delete(ctx context.Context, userID, methodID string) (bool, error) {
	method, err := s.methods.FindByID(ctx, methodID)
	if err != nil {
		return false, mapStoreError(err)
	}
	if method.UserID != userID {
		return false, application.NewNotFoundError(domain.NewMethodNotFoundError(methodID))
	}
	if !method.IsActive {
		return false, nil
	}

	method.Deactivate()
	if err := s.methods.Update(ctx, method); err != nil {
		return false, application.NewInternalError(err)
	}
	return true, nil
}
