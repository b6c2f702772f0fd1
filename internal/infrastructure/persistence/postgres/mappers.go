package postgres

import (
	"github.com/mwhayford/rentledger/internal/domain"
)

func toPaymentDomain(m PaymentModel) *domain.Payment {
	return domain.ReconstitutePayment(
		m.ID,
		m.UserID,
		domain.Money{Amount: m.Amount, Currency: m.Currency},
		domain.Money{Amount: m.RefundedAmount, Currency: m.Currency},
		domain.PaymentStatus(m.Status),
		domain.MethodType(m.MethodType),
		m.MethodID,
		m.ProcessorIntentID,
		m.ProcessorChargeID,
		m.Description,
		m.FailureReason,
		m.ProcessedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toPaymentModel(p *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                p.ID,
		UserID:            p.UserID,
		Amount:            p.Amount.Amount,
		RefundedAmount:    p.RefundedAmount.Amount,
		Currency:          p.Amount.Currency,
		Status:            string(p.Status),
		MethodType:        string(p.MethodType),
		MethodID:          p.MethodID,
		ProcessorIntentID: p.ProcessorIntentID,
		ProcessorChargeID: p.ProcessorChargeID,
		Description:       p.Description,
		FailureReason:     p.FailureReason,
		ProcessedAt:       p.ProcessedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toSubscriptionDomain(m SubscriptionModel) *domain.Subscription {
	return domain.ReconstituteSubscription(
		m.ID,
		m.UserID,
		m.PlanID,
		domain.Money{Amount: m.Amount, Currency: m.Currency},
		domain.SubscriptionStatus(m.Status),
		m.ProcessorSubscriptionID,
		m.ProcessorCustomerID,
		m.CurrentPeriodStart,
		m.CurrentPeriodEnd,
		m.CanceledAt,
		m.TrialStart,
		m.TrialEnd,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toSubscriptionModel(s *domain.Subscription) *SubscriptionModel {
	return &SubscriptionModel{
		ID:                      s.ID,
		UserID:                  s.UserID,
		PlanID:                  s.PlanID,
		Amount:                  s.Amount.Amount,
		Currency:                s.Amount.Currency,
		Status:                  string(s.Status),
		ProcessorSubscriptionID: s.ProcessorSubscriptionID,
		ProcessorCustomerID:     s.ProcessorCustomerID,
		CurrentPeriodStart:      s.CurrentPeriodStart,
		CurrentPeriodEnd:        s.CurrentPeriodEnd,
		CanceledAt:              s.CanceledAt,
		TrialStart:              s.TrialStart,
		TrialEnd:                s.TrialEnd,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
}

func toPaymentMethodDomain(m PaymentMethodModel) *domain.PaymentMethod {
	return domain.ReconstitutePaymentMethod(
		m.ID,
		m.UserID,
		domain.MethodType(m.Type),
		m.ProcessorMethodID,
		m.LastFourDigits,
		m.Brand,
		m.BankName,
		m.IsDefault,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toPaymentMethodModel(pm *domain.PaymentMethod) *PaymentMethodModel {
	return &PaymentMethodModel{
		ID:                pm.ID,
		UserID:            pm.UserID,
		Type:              string(pm.Type),
		ProcessorMethodID: pm.ProcessorMethodID,
		LastFourDigits:    pm.LastFourDigits,
		Brand:             pm.Brand,
		BankName:          pm.BankName,
		IsDefault:         pm.IsDefault,
		IsActive:          pm.IsActive,
		CreatedAt:         pm.CreatedAt,
		UpdatedAt:         pm.UpdatedAt,
	}
}
