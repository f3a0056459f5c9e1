// Package refreshtoken handles session token renewal. An expired but
// authentic token is accepted so clients can recover without
// re-entering credentials.
package refreshtoken

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

// Service reissues a token with a fresh expiry.
type Service interface {
	RefreshToken(ctx context.Context, token string) (string, error)
}

// Handler processes refresh requests.
type Handler struct {
	log         *slog.Logger
	authService Service
	cfg         *config.Config
}

// New creates the refresh handler.
func New(log *slog.Logger, authService Service, cfg *config.Config) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		cfg:         cfg,
	}
}

// ServeHTTP godoc
// @Summary Refresh a session token
// @Description Reissues the token with a fresh seven-day expiry; an expired but authentic token is accepted
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "New token issued"
// @Failure 401 {object} response.ErrorResponse "Token is not authentic"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refreshtoken"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tokenStr := middlewarectx.TokenFromRequest(r)
	if tokenStr == "" {
		log.Error("missing token")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return
	}

	fresh, err := h.authService.RefreshToken(r.Context(), tokenStr)
	if err != nil {
		log.Warn("refresh failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid token"))
		return
	}

	session.Write(w, fresh, h.cfg.IsProd())
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session": response.Session{AccessToken: fresh},
	}))
}
