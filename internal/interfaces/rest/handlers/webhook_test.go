package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhayford/rentledger/internal/interfaces/rest/handlers"
	"github.com/mwhayford/rentledger/internal/webhook"
)

const testWebhookSecret = "whsec_test"

type recordingDedup struct {
	processed map[string]string
}

func newRecordingDedup() *recordingDedup {
	return &recordingDedup{processed: make(map[string]string)}
}

func (d *recordingDedup) AlreadyProcessed(_ context.Context, eventID string) (bool, error) {
	_, ok := d.processed[eventID]
	return ok, nil
}

func (d *recordingDedup) MarkProcessed(_ context.Context, eventID, eventType string) error {
	d.processed[eventID] = eventType
	return nil
}

// newWebhookHandlers wires a Handlers instance with a single registered
// event handler; calls counts how often reconciliation actually ran.
func newWebhookHandlers(t *testing.T, calls *int, handlerErr error) (*handlers.Handlers, *recordingDedup) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dedup := newRecordingDedup()

	router := webhook.NewRouter(dedup, logger)
	router.MustRegister(webhook.TypeChargeSucceeded, func(context.Context, webhook.Envelope) error {
		*calls++
		return handlerErr
	})

	return handlers.NewHandlers(nil, nil, nil, nil, router, testWebhookSecret, logger), dedup
}

func chargeEventBody(t *testing.T, id string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":   id,
		"type": webhook.TypeChargeSucceeded,
		"data": map[string]any{"object": map[string]any{"id": "ch_1"}},
	})
	require.NoError(t, err)
	return body
}

func postWebhook(h *handlers.Handlers, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHandleWebhook(t *testing.T) {
	t.Run("invalid signature answers 400 with zero state changes", func(t *testing.T) {
		var calls int
		h, dedup := newWebhookHandlers(t, &calls, nil)
		body := chargeEventBody(t, "evt_1")

		rec := postWebhook(h, body, webhook.Sign("wrong-secret", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_SIGNATURE", decodeErrorCode(t, rec))
		assert.Zero(t, calls)
		assert.Empty(t, dedup.processed)
	})

	t.Run("missing signature header answers 400", func(t *testing.T) {
		var calls int
		h, dedup := newWebhookHandlers(t, &calls, nil)

		rec := postWebhook(h, chargeEventBody(t, "evt_1"), "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_SIGNATURE", decodeErrorCode(t, rec))
		assert.Zero(t, calls)
		assert.Empty(t, dedup.processed)
	})

	t.Run("signed but unparsable body answers 400", func(t *testing.T) {
		var calls int
		h, dedup := newWebhookHandlers(t, &calls, nil)
		body := []byte("{not json")

		rec := postWebhook(h, body, webhook.Sign(testWebhookSecret, body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_PAYLOAD", decodeErrorCode(t, rec))
		assert.Zero(t, calls)
		assert.Empty(t, dedup.processed)
	})

	t.Run("reconciler failure answers 500 so the processor redelivers", func(t *testing.T) {
		var calls int
		h, dedup := newWebhookHandlers(t, &calls, errors.New("db down"))
		body := chargeEventBody(t, "evt_1")

		rec := postWebhook(h, body, webhook.Sign(testWebhookSecret, body))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeErrorCode(t, rec))
		assert.Equal(t, 1, calls)
		assert.Empty(t, dedup.processed)
	})

	t.Run("valid event answers 200 and marks the event processed", func(t *testing.T) {
		var calls int
		h, dedup := newWebhookHandlers(t, &calls, nil)
		body := chargeEventBody(t, "evt_1")

		rec := postWebhook(h, body, webhook.Sign(testWebhookSecret, body))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, calls)
		assert.Equal(t, webhook.TypeChargeSucceeded, dedup.processed["evt_1"])

		var resp struct {
			Success bool `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("replayed event is acknowledged without reprocessing", func(t *testing.T) {
		var calls int
		h, _ := newWebhookHandlers(t, &calls, nil)
		body := chargeEventBody(t, "evt_1")
		signature := webhook.Sign(testWebhookSecret, body)

		assert.Equal(t, http.StatusOK, postWebhook(h, body, signature).Code)
		assert.Equal(t, http.StatusOK, postWebhook(h, body, signature).Code)
		assert.Equal(t, 1, calls)
	})
}
