// Package guest handles anonymous trial logins.
package guest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/http/response"
	"github.com/teamplaymate/coaching-backend/internal/http/session"
	"github.com/teamplaymate/coaching-backend/internal/lib/sl"
	"github.com/teamplaymate/coaching-backend/internal/services/auth"
)

// Service creates a throwaway guest account with its session.
type Service interface {
	GuestLogin(ctx context.Context) (*auth.Session, error)
}

// Handler processes guest logins.
type Handler struct {
	log         *slog.Logger
	authService Service
	cfg         *config.Config
}

// New creates the guest login handler.
func New(log *slog.Logger, authService Service, cfg *config.Config) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		cfg:         cfg,
	}
}

// ServeHTTP godoc
// @Summary Log in as a guest
// @Description Creates a throwaway guest account on the free plan and returns its session
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Guest session issued"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /auth/guest [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.guest"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, err := h.authService.GuestLogin(r.Context())
	if err != nil {
		log.Error("guest login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create guest session"))
		return
	}

	session.Write(w, sess.Token, h.cfg.IsProd())
	log.Info("guest session created", slog.String("account_uid", sess.Account.UID))

	render.JSON(w, r, response.OKWithData(response.Auth(sess.Account, sess.Token)))
}
