package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mwhayford/rentledger/internal/interfaces/rest"
)

// Timeout bounds handler execution. Requests past the deadline get a 503
// carrying the standard error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(rest.ErrorResponse{
		Error: rest.ErrorDetail{Code: "TIMEOUT", Message: "Request timed out"},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			http.TimeoutHandler(next, timeout, string(body)).ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
