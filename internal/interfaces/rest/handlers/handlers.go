// Package handlers exposes the command and query surface over HTTP.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/application/services"
	"github.com/mwhayford/rentledger/internal/interfaces/rest"
	"github.com/mwhayford/rentledger/internal/webhook"
)

type Handlers struct {
	paymentService *services.PaymentService
	subService     *services.SubscriptionService
	methodService  *services.PaymentMethodService
	queryService   *services.QueryService
	webhookRouter  *webhook.Router
	webhookSecret  string
	validate       *validator.Validate
	logger         *slog.Logger
}

func NewHandlers(
	paymentService *services.PaymentService,
	subService *services.SubscriptionService,
	methodService *services.PaymentMethodService,
	queryService *services.QueryService,
	webhookRouter *webhook.Router,
	webhookSecret string,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		paymentService: paymentService,
		subService:     subService,
		methodService:  methodService,
		queryService:   queryService,
		webhookRouter:  webhookRouter,
		webhookSecret:  webhookSecret,
		validate:       validator.New(),
		logger:         logger,
	}
}

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation. A false return means the error response was already written.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err), h.logger)
		return false
	}
	return true
}
