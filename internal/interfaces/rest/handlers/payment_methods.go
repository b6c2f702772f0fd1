package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mwhayford/rentledger/internal/application/services"
	"github.com/mwhayford/rentledger/internal/domain"
	"github.com/mwhayford/rentledger/internal/interfaces/rest"
)

func (h *Handlers) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req rest.CreatePaymentMethodRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	cmd := services.CreatePaymentMethodCommand{
		UserID:            req.UserID,
		Type:              domain.MethodType(req.Type),
		ProcessorMethodID: req.ProcessorMethodID,
		LastFourDigits:    req.LastFourDigits,
		Brand:             req.Brand,
		BankName:          req.BankName,
		MakeDefault:       req.MakeDefault,
	}

	method, err := h.methodService.Create(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusCreated, rest.ToAPIPaymentMethod(method))
}

func (h *Handlers) ListUserPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.queryService.ListUserPaymentMethods(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	rest.WriteData(w, http.StatusOK, rest.ToAPIPaymentMethods(methods))
}

func (h *Handlers) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req rest.SetDefaultMethodRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	method, err := h.methodService.SetDefault(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, rest.ToAPIPaymentMethod(method))
}

func (h *Handlers) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req rest.SetDefaultMethodRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	deleted, err := h.methodService.Delete(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, map[string]bool{"deleted": deleted})
}
