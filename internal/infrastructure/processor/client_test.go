package processor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/config"
	"github.com/mwhayford/rentledger/internal/infrastructure/processor"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) application.ProcessorClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return processor.NewClient(config.ProcessorConfig{
		BaseURL:     server.URL,
		APIKey:      "sk_test_123",
		ConnTimeout: 5 * time.Second,
	})
}

func TestClientCreateCharge(t *testing.T) {
	ctx := context.Background()

	t.Run("sends auth and idempotency headers", func(t *testing.T) {
		var gotAuth, gotIdem string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotIdem = r.Header.Get("Idempotency-Key")
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/charges", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "100.00", body["amount"])
			assert.Equal(t, "USD", body["currency"])

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "pi_1", "status": "succeeded"})
		})

		resp, err := client.CreateCharge(ctx, application.ChargeRequest{
			Amount:   "100.00",
			Currency: "USD",
		})

		require.NoError(t, err)
		assert.Equal(t, "pi_1", resp.ID)
		assert.Equal(t, application.ProcessorStatusSucceeded, resp.Status)
		assert.Equal(t, "Bearer sk_test_123", gotAuth)
		assert.NotEmpty(t, gotIdem)
	})

	t.Run("maps error envelope to ProcessorError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "card_declined",
				"message": "Your card was declined.",
			})
		})

		_, err := client.CreateCharge(ctx, application.ChargeRequest{Amount: "100.00", Currency: "USD"})

		require.Error(t, err)
		procErr, ok := processor.IsProcessorError(err)
		require.True(t, ok)
		assert.Equal(t, "card_declined", procErr.Code)
		assert.Equal(t, "Your card was declined.", procErr.Message)
		assert.Equal(t, http.StatusPaymentRequired, procErr.StatusCode)
		assert.False(t, procErr.IsRetryable())
	})

	t.Run("5xx errors are retryable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "upstream_unavailable",
				"message": "Try again shortly.",
			})
		})

		_, err := client.CreateCharge(ctx, application.ChargeRequest{Amount: "100.00", Currency: "USD"})

		procErr, ok := processor.IsProcessorError(err)
		require.True(t, ok)
		assert.True(t, procErr.IsRetryable())
	})

	t.Run("non-json error body surfaces status and text", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
		})

		_, err := client.CreateCharge(ctx, application.ChargeRequest{Amount: "100.00", Currency: "USD"})

		require.Error(t, err)
		_, ok := processor.IsProcessorError(err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "502")
	})
}

func TestClientCreateSubscription(t *testing.T) {
	ctx := context.Background()
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user-1", body["customer"])
		assert.Equal(t, "plan-basic", body["plan"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                 "sub_1",
			"customer_id":        "cus_1",
			"status":             "active",
			"current_period_end": periodEnd.Format(time.RFC3339),
		})
	})

	resp, err := client.CreateSubscription(ctx, application.SubscriptionRequest{
		CustomerRef: "user-1",
		PlanRef:     "plan-basic",
	})

	require.NoError(t, err)
	assert.Equal(t, "sub_1", resp.ID)
	assert.Equal(t, "cus_1", resp.CustomerID)
	assert.Equal(t, application.ProcessorStatusActive, resp.Status)
	assert.True(t, periodEnd.Equal(resp.CurrentPeriodEnd))
}

func TestClientCancelSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("204 response is success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/v1/subscriptions/sub_1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, client.CancelSubscription(ctx, "sub_1"))
	})

	t.Run("missing subscription surfaces processor error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "resource_missing",
				"message": "No such subscription.",
			})
		})

		err := client.CancelSubscription(ctx, "sub_unknown")

		procErr, ok := processor.IsProcessorError(err)
		require.True(t, ok)
		assert.Equal(t, "resource_missing", procErr.Code)
	})
}

func TestClientRefund(t *testing.T) {
	ctx := context.Background()
	amount := "50.00"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ch_1", body["charge"])
		assert.Equal(t, "50.00", body["amount"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "re_1"})
	})

	resp, err := client.Refund(ctx, application.RefundRequest{
		ChargeRef: "ch_1",
		Amount:    &amount,
		Currency:  "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, "re_1", resp.ID)
}
