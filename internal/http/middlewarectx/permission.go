package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/plans"
)

// RequirePermission returns middleware that gates a route on a plan
// entitlement. The plan comes from the context set by Protect, so the
// check always reflects the account's stored plan.
func RequirePermission(log *slog.Logger, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plan, ok := r.Context().Value(Plan).(string)
			if !ok || plan == "" {
				log.Error("plan missing from request context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			if !plans.Allows(plan, permission) {
				log.Warn("plan does not allow action",
					slog.String("plan", plan), slog.String("permission", permission))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("your plan does not allow this action"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
