package paymentcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/services/payment"
)

type serviceMock struct {
	createFunc func(ctx context.Context, accountUID, planName string) (*payment.CheckoutResult, error)
}

func (m *serviceMock) CreatePayment(ctx context.Context, accountUID, planName string) (*payment.CheckoutResult, error) {
	return m.createFunc(ctx, accountUID, planName)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func authedRequest(body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middlewarectx.AccountUID, "uid-1")
	ctx = context.WithValue(ctx, middlewarectx.Role, models.RoleCoach)
	return req.WithContext(ctx)
}

func TestCreatePaymentHandler_ServeHTTP(t *testing.T) {
	t.Run("paid plan returns approval url", func(t *testing.T) {
		svc := &serviceMock{
			createFunc: func(_ context.Context, accountUID, planName string) (*payment.CheckoutResult, error) {
				assert.Equal(t, "uid-1", accountUID)
				assert.Equal(t, "pro", planName)
				return &payment.CheckoutResult{
					PaymentID:   "pay-1",
					OrderID:     "ORDER-1",
					Status:      models.PaymentPending,
					ApprovalURL: "https://gateway.example/approve",
				}, nil
			},
		}
		handler := New(newNoopLogger(), svc)

		body, _ := json.Marshal(Request{Plan: "pro"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(body))

		require.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, true, got["success"])
		data := got["data"].(map[string]any)
		assert.Equal(t, "https://gateway.example/approve", data["approval_url"])
	})

	t.Run("unknown plan", func(t *testing.T) {
		svc := &serviceMock{
			createFunc: func(_ context.Context, _, _ string) (*payment.CheckoutResult, error) {
				return nil, payment.ErrPlanUnknown
			},
		}
		handler := New(newNoopLogger(), svc)

		body, _ := json.Marshal(Request{Plan: "platinum"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("gateway down", func(t *testing.T) {
		svc := &serviceMock{
			createFunc: func(_ context.Context, _, _ string) (*payment.CheckoutResult, error) {
				return nil, payment.ErrGateway
			},
		}
		handler := New(newNoopLogger(), svc)

		body, _ := json.Marshal(Request{Plan: "pro"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(body))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing identity", func(t *testing.T) {
		handler := New(newNoopLogger(), &serviceMock{})
		body, _ := json.Marshal(Request{Plan: "pro"})
		req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
