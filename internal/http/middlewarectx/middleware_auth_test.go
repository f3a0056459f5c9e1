package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libjwt "github.com/teamplaymate/coaching-backend/internal/lib/jwt"
	"github.com/teamplaymate/coaching-backend/internal/http/session"
	"github.com/teamplaymate/coaching-backend/internal/models"
	"github.com/teamplaymate/coaching-backend/internal/plans"
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

type mockAuthService struct {
	validateFunc func(ctx context.Context, token string) (*models.Account, *libjwt.Claims, error)
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*models.Account, *libjwt.Claims, error) {
	return m.validateFunc(ctx, token)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestProtect(t *testing.T) {
	acc := &models.Account{UID: "uid-1", Role: models.RoleCoach, Plan: plans.Pro}
	svc := &mockAuthService{
		validateFunc: func(_ context.Context, token string) (*models.Account, *libjwt.Claims, error) {
			if token != "good-token" {
				return nil, nil, auth.ErrInvalidToken
			}
			return acc, &libjwt.Claims{}, nil
		},
	}

	var gotUID, gotRole, gotPlan string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = r.Context().Value(AccountUID).(string)
		gotRole, _ = r.Context().Value(Role).(string)
		gotPlan, _ = r.Context().Value(Plan).(string)
		w.WriteHeader(http.StatusOK)
	})
	handler := Protect(svc, testLogger())(next)

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "uid-1", gotUID)
		assert.Equal(t, models.RoleCoach, gotRole)
		assert.Equal(t, plans.Pro, gotPlan)
	})

	t.Run("session cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "good-token"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), `"success":false`)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRestrictTo(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RestrictTo(testLogger(), models.RoleAdmin)(next)

	cases := []struct {
		name     string
		role     string
		wantCode int
	}{
		{name: "admin passes", role: models.RoleAdmin, wantCode: http.StatusOK},
		{name: "coach denied", role: models.RoleCoach, wantCode: http.StatusForbidden},
		{name: "missing role", role: "", wantCode: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.role != "" {
				req = req.WithContext(context.WithValue(req.Context(), Role, tc.role))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.wantCode, rr.Code)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequirePermission(testLogger(), "canExportPDF")(next)

	cases := []struct {
		name     string
		plan     string
		wantCode int
	}{
		{name: "pro allowed", plan: plans.Pro, wantCode: http.StatusOK},
		{name: "free denied", plan: plans.Free, wantCode: http.StatusForbidden},
		{name: "missing plan", plan: "", wantCode: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/export", nil)
			if tc.plan != "" {
				req = req.WithContext(context.WithValue(req.Context(), Plan, tc.plan))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tc.wantCode, rr.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(testLogger(), 1, 2)(next)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
