package forgotpassword

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

	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

type serviceMock struct {
	forgotFunc func(ctx context.Context, email string) error
}

func (m *serviceMock) ForgotPassword(ctx context.Context, email string) error {
	return m.forgotFunc(ctx, email)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestForgotPasswordHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		serviceErr     error
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
	}{
		{
			name:           "code issued",
			requestBody:    Request{Email: "coach@example.com"},
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
			wantMessage:    "reset code sent",
		},
		{
			name:           "unknown email",
			requestBody:    Request{Email: "nobody@example.com"},
			serviceErr:     auth.ErrAccountNotFound,
			wantStatusCode: http.StatusNotFound,
			wantMessage:    "no account with that email",
		},
		{
			name:           "invalid email",
			requestBody:    Request{Email: "not-an-email"},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "field Email must be a valid email address",
		},
		{
			name:           "invalid json",
			requestBody:    "{",
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &serviceMock{
				forgotFunc: func(_ context.Context, _ string) error {
					return tt.serviceErr
				},
			}
			handler := New(newNoopLogger(), svc)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantSuccess, got["success"])
			assert.Equal(t, tt.wantMessage, got["message"])
		})
	}
}
