package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
	"github.com/teamplaymate/coaching-backend/internal/services/payment"
)

type authMock struct {
	registerFunc func(ctx context.Context, p auth.RegisterParams) (*auth.Session, error)
}

func (m *authMock) Register(ctx context.Context, p auth.RegisterParams) (*auth.Session, error) {
	return m.registerFunc(ctx, p)
}

type paymentMock struct {
	createFunc func(ctx context.Context, accountUID, planName string) (*payment.CheckoutResult, error)
}

func (m *paymentMock) CreatePayment(ctx context.Context, accountUID, planName string) (*payment.CheckoutResult, error) {
	return m.createFunc(ctx, accountUID, planName)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	acc := &models.Account{UID: "uid-1", Email: "a@x.com", Role: models.RoleCoach, Plan: "free"}

	valid := Request{
		Name:            "Alex",
		Email:           "a@x.com",
		Password:        "Secret123!",
		PasswordConfirm: "Secret123!",
		Plan:            "free",
	}

	tests := []struct {
		name           string
		requestBody    any
		registerErr    error
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
		wantRegistered bool
	}{
		{
			name:           "valid registration",
			requestBody:    valid,
			wantStatusCode: http.StatusCreated,
			wantSuccess:    true,
			wantRegistered: true,
		},
		{
			name: "missing password confirmation",
			requestBody: Request{
				Name: "Alex", Email: "a@x.com", Password: "Secret123!", Plan: "free",
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "field PasswordConfirm is a required field",
		},
		{
			name: "mismatched password confirmation",
			requestBody: Request{
				Name: "Alex", Email: "a@x.com",
				Password: "Secret123!", PasswordConfirm: "Different1!", Plan: "free",
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "field PasswordConfirm must match field Password",
		},
		{
			name: "missing plan",
			requestBody: Request{
				Name: "Alex", Email: "a@x.com",
				Password: "Secret123!", PasswordConfirm: "Secret123!",
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "field Plan is a required field",
		},
		{
			name:           "duplicate email",
			requestBody:    valid,
			registerErr:    auth.ErrEmailTaken,
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "email already in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registered := false
			authSvc := &authMock{
				registerFunc: func(_ context.Context, _ auth.RegisterParams) (*auth.Session, error) {
					if tt.registerErr != nil {
						return nil, tt.registerErr
					}
					registered = true
					return &auth.Session{Account: acc, Token: "tok"}, nil
				},
			}
			paymentSvc := &paymentMock{
				createFunc: func(_ context.Context, _, _ string) (*payment.CheckoutResult, error) {
					return &payment.CheckoutResult{Status: models.PaymentSucceeded}, nil
				},
			}
			handler := New(newNoopLogger(), authSvc, paymentSvc, &config.Config{})

			bodyBytes, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantRegistered, registered,
				"account creation must be reached only by fully validated requests")

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantSuccess, got["success"])

			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got["message"])
			}

			if tt.wantSuccess {
				data := got["data"].(map[string]any)
				user := data["user"].(map[string]any)
				assert.Equal(t, "a@x.com", user["email"])
				assert.NotContains(t, user, "password")
				sess := data["session"].(map[string]any)
				assert.Equal(t, "tok", sess["access_token"])
			}
		})
	}
}
