package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mwhayford/rentledger/internal/interfaces/rest/middleware"
)

// NewRouter assembles the HTTP surface. The webhook route skips the request
// timeout so a slow reconciling write is not cut off mid-transaction.
func NewRouter(h *Handlers, requestTimeout time.Duration, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Signature"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/payments/webhook", h.HandleWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", h.ProcessPayment)
			r.Get("/{id}", h.GetPayment)
			r.Post("/{id}/refund", h.RefundPayment)
			r.Post("/{id}/cancel", h.CancelPayment)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", h.ProcessSubscription)
			r.Get("/{id}", h.GetSubscription)
			r.Delete("/{id}", h.CancelSubscription)
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Post("/", h.CreatePaymentMethod)
			r.Put("/{id}/default", h.SetDefaultPaymentMethod)
			r.Delete("/{id}", h.DeletePaymentMethod)
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/payments", h.ListUserPayments)
			r.Get("/subscriptions", h.ListUserSubscriptions)
			r.Get("/payment-methods", h.ListUserPaymentMethods)
		})
	})

	return r
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
