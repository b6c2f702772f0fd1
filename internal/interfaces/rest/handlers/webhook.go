package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/mwhayford/rentledger/internal/interfaces/rest"
	"github.com/mwhayford/rentledger/internal/webhook"
)

const maxWebhookBodyBytes = 1 << 20

// HandleWebhook receives processor event notifications. 200 acknowledges and
// stops redelivery; 400 rejects an invalid signature or unparsable body; 500
// asks the processor to redeliver later.
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.ErrorResponse{
			Error: rest.ErrorDetail{Code: "INTERNAL_ERROR", Message: "Could not read request body"},
		})
		return
	}

	signature := r.Header.Get("X-Signature")
	if !webhook.VerifySignature(h.webhookSecret, body, signature) {
		h.logger.Warn("rejected webhook with invalid signature", "remote_addr", r.RemoteAddr)
		rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{
			Error: rest.ErrorDetail{Code: "INVALID_SIGNATURE", Message: "Webhook signature verification failed"},
		})
		return
	}

	if err := h.webhookRouter.Process(r.Context(), body); err != nil {
		if errors.Is(err, webhook.ErrBadPayload) {
			rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{
				Error: rest.ErrorDetail{Code: "INVALID_PAYLOAD", Message: "Webhook payload could not be parsed"},
			})
			return
		}
		rest.WriteJSON(w, http.StatusInternalServerError, rest.ErrorResponse{
			Error: rest.ErrorDetail{Code: "INTERNAL_ERROR", Message: "Event processing failed"},
		})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.SuccessResponse{Success: true})
}
