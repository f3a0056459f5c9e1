// Package middlewarectx holds the HTTP middleware guarding the
// protected routes: token verification, role restriction, plan
// permission checks and rate limiting. Verified identity travels in
// the request context under typed keys.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	libjwt "github.com/teamplaymate/coaching-backend/internal/lib/jwt"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/http/session"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/models"
)

// Key is the context key type for request identity values.
type Key string

const (
	// AccountUID is the verified account UID.
	AccountUID Key = "account_uid"
	// Role is the verified account role.
	Role Key = "role"
	// Plan is the account's current plan, read fresh from storage so a
	// stale token cannot grant entitlements the account no longer has.
	Plan Key = "plan"
)

// Service validates a token end to end and resolves its account.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Account, *libjwt.Claims, error)
}

// TokenFromRequest extracts the bearer token, falling back to the
// session cookie for browser clients.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return session.Read(r)
}

// Protect returns middleware that rejects requests without a valid
// token and stores the verified identity in the request context.
func Protect(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Protect"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			acc, _, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), AccountUID, acc.UID)
			ctx = context.WithValue(ctx, Role, acc.Role)
			ctx = context.WithValue(ctx, Plan, acc.Plan)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
