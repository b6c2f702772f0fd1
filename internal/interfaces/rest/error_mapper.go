package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mwhayford/rentledger/internal/application"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// WriteError maps application errors to HTTP responses. Unknown error types
// become opaque 500s so internals never leak to callers.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := http.StatusInternalServerError
	code := application.ErrCodeInternal
	message := "An internal error occurred"

	if svcErr, ok := application.IsServiceError(err); ok {
		statusCode = svcErr.HTTPStatus
		code = svcErr.Code
		message = svcErr.Message
	}

	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}

	WriteJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, statusCode int, data any) {
	WriteJSON(w, statusCode, SuccessResponse{Success: true, Data: data})
}
