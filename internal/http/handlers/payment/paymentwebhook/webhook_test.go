package paymentwebhook

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceMock struct {
	handleFunc func(ctx context.Context, eventType, orderID, captureID string) error
}

func (m *serviceMock) HandleWebhookEvent(ctx context.Context, eventType, orderID, captureID string) error {
	if m.handleFunc == nil {
		return nil
	}
	return m.handleFunc(ctx, eventType, orderID, captureID)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const captureEvent = `{
	"id": "WH-1",
	"event_type": "PAYMENT.CAPTURE.COMPLETED",
	"resource": {
		"id": "CAP-1",
		"supplementary_data": {"related_ids": {"order_id": "ORDER-1"}}
	}
}`

func TestWebhookHandler_ServeHTTP(t *testing.T) {
	t.Run("valid secret reconciles event", func(t *testing.T) {
		var gotType, gotOrder, gotCapture string
		svc := &serviceMock{
			handleFunc: func(_ context.Context, eventType, orderID, captureID string) error {
				gotType, gotOrder, gotCapture = eventType, orderID, captureID
				return nil
			},
		}
		handler := New(newNoopLogger(), svc, "hook-secret")

		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader([]byte(captureEvent)))
		req.Header.Set("X-Webhook-Secret", "hook-secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "PAYMENT.CAPTURE.COMPLETED", gotType)
		assert.Equal(t, "ORDER-1", gotOrder)
		assert.Equal(t, "CAP-1", gotCapture)
	})

	t.Run("bad secret rejected", func(t *testing.T) {
		handler := New(newNoopLogger(), &serviceMock{}, "hook-secret")

		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader([]byte(captureEvent)))
		req.Header.Set("X-Webhook-Secret", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("garbage body", func(t *testing.T) {
		handler := New(newNoopLogger(), &serviceMock{}, "hook-secret")

		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader([]byte("{")))
		req.Header.Set("X-Webhook-Secret", "hook-secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
