package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/application/services"
	"github.com/mwhayford/rentledger/internal/interfaces/rest"
)

func (h *Handlers) ProcessSubscription(w http.ResponseWriter, r *http.Request) {
	var req rest.ProcessSubscriptionRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return
	}

	cmd := services.ProcessSubscriptionPaymentCommand{
		UserID:   req.UserID,
		PlanID:   req.PlanID,
		Amount:   amount,
		Currency: req.Currency,
		MethodID: req.MethodID,
	}

	subscription, err := h.subService.ProcessSubscriptionPayment(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusCreated, rest.ToAPISubscription(subscription))
}

func (h *Handlers) GetSubscription(w http.ResponseWriter, r *http.Request) {
	subscription, err := h.queryService.GetSubscription(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToAPISubscription(subscription))
}

func (h *Handlers) ListUserSubscriptions(w http.ResponseWriter, r *http.Request) {
	subscriptions, err := h.queryService.ListUserSubscriptions(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToAPISubscriptions(subscriptions))
}

func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.subService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}
