// Package logout handles session termination: the token id is revoked
// until the token would have expired, and the cookie is cleared.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/http/middlewarectx"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/http/session"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
)

// Service revokes the token.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler processes logout requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	cfg         *config.Config
}

// New creates the logout handler.
func New(log *slog.Logger, authService Service, cfg *config.Config) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		cfg:         cfg,
	}
}

// ServeHTTP godoc
// @Summary Log out
// @Description Revokes the current token and clears the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Logged out"
// @Router /auth/logout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if tokenStr := middlewarectx.TokenFromRequest(r); tokenStr != "" {
		if err := h.authService.Logout(r.Context(), tokenStr); err != nil {
			// Logout must still clear the cookie; a revocation failure
			// only means the token dies at its natural expiry.
			log.Warn("failed to revoke token", sl.Err(err))
		}
	}

	session.Clear(w, h.cfg.IsProd())
	log.Info("logged out")
	render.JSON(w, r, response.OK("logged out successfully"))
}
