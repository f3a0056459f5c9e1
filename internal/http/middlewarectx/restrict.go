package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/http/response"
)

// RestrictTo returns middleware admitting only the listed roles. Runs
// after Protect.
func RestrictTo(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role == "" {
				log.Error("role missing from request context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			if !slices.Contains(roles, role) {
				log.Warn("access denied for role", slog.String("role", role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("you do not have permission to perform this action"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
