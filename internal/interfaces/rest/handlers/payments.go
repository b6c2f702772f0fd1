package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/application/services"
	"github.com/mwhayford/rentledger/internal/domain"
	"github.com/mwhayford/rentledger/internal/interfaces/rest"
)

func (h *Handlers) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req rest.ProcessPaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	cmd := services.ProcessPaymentCommand{
		UserID:      req.UserID,
		Amount:      amount,
		Currency:    req.Currency,
		MethodType:  domain.MethodType(req.MethodType),
		MethodID:    req.MethodID,
		Description: req.Description,
	}

	payment, err := h.paymentService.ProcessPayment(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusCreated, rest.ToAPIPayment(payment))
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.queryService.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToAPIPayment(payment))
}

func (h *Handlers) ListUserPayments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	payments, err := h.queryService.ListUserPayments(r.Context(), chi.URLParam(r, "userId"), limit, offset)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToAPIPayments(payments))
}

func (h *Handlers) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req rest.RefundPaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	cmd := services.RefundPaymentCommand{
		PaymentID: chi.URLParam(r, "id"),
		Currency:  req.Currency,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
			return
		}
		cmd.Amount = &amount
	}

	payment, err := h.paymentService.Refund(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, rest.ToAPIPayment(payment))
}

func (h *Handlers) CancelPayment(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.paymentService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}
